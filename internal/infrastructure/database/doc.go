// Package database provides SQLite database connectivity for Inkwell.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations embedded into the binary
//   - Connection lifecycle management
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files live in the migrations/ directory at the repository root
// and follow the naming scheme YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql for rollbacks.
package database
