package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxQueryLength      = 1000
	maxDocumentIDLength = 256
)

// ValidateQuery validates a free-text search query.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only queries
//   - No control characters (newlines included)
//   - Maximum length of 1000 characters
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return New(ErrCodeInvalidInput, "query cannot be empty")
	}
	if len(query) > maxQueryLength {
		return New(ErrCodeInvalidInput, "query too long (max %d characters)", maxQueryLength)
	}
	for _, r := range query {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "query contains invalid control characters")
		}
	}
	return nil
}

// ValidateDocumentID validates a document identifier before it is placed into a URL.
// It rejects identifiers that could be used for path traversal or injection.
//
// Source-specific format checks (CELEX numbers, procedure references) are done
// separately by the source definitions.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document id cannot be empty")
	}
	if len(id) > maxDocumentIDLength {
		return New(ErrCodeInvalidInput, "document id too long (max %d characters)", maxDocumentIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "\\", "?", "#"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "document id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// sourceNameRegex matches registry keys such as "eurlex" or "european_parliament".
var sourceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateSourceName validates a source registry key.
func ValidateSourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "source name cannot be empty")
	}
	if !sourceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid source name: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
