package scrape

import "fmt"

// ExtractionError reports a required DOM field that is missing or malformed.
// It is always fatal for the current item and carries the page URL and the
// offending raw text for diagnosis.
type ExtractionError struct {
	URL   string
	Field string
	Raw   string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("extract %s: field %q not found", e.URL, e.Field)
	}
	return fmt.Sprintf("extract %s: field %q invalid: %q", e.URL, e.Field, e.Raw)
}

func extractionErr(url, field, raw string) error {
	return &ExtractionError{URL: url, Field: field, Raw: raw}
}
