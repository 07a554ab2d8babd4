package article

import "strings"

// maxTitleLength is the maximum allowed title length.
const maxTitleLength = 255

// ValidationErrors maps a field name to the messages explaining why it was
// rejected. A nil or empty map means the input is valid.
type ValidationErrors map[string][]string

// Add appends a message for a field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("validation failed:")
	for field, messages := range v {
		for _, msg := range messages {
			b.WriteString(" " + field + ": " + msg + ";")
		}
	}
	return b.String()
}

// Validate checks article input before insert or update. Update re-validates
// exactly like create. Returns nil when the input is acceptable.
func Validate(title, content string) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(title) == "" {
		errs.Add("title", "The title field is required.")
	} else if len(title) > maxTitleLength {
		errs.Add("title", "The title field must not be greater than 255 characters.")
	}

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "The content field is required.")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
