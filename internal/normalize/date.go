package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Brazilian exports favor DD/MM/YYYY; the
// billing provider emits ISO forms.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Date parses a date in any of the accepted layouts. Unparseable input
// yields nil, never an error.
func Date(raw string) *time.Time {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return &t
		}
	}
	return nil
}
