// Package article provides the blog article domain model and its SQLite
// persistence.
//
// Articles belong to exactly one user, fixed at creation. Listing is
// paginated newest first with a fixed page size, and every read loads the
// owning user alongside the article so API responses can embed the author.
package article
