package httpcore

import (
	"strings"

	"github.com/agata-borkowska-clark/reactorhttp/status"
)

// Method is a recognized HTTP request method (spec §4.6: only GET/POST are
// recognized; anything else is a 400).
type Method int

const (
	MethodGet Method = iota
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "<unknown method>"
	}
}

// ParseMethod recognizes GET and POST, case-insensitively, matching the
// original's case_insensitive_string_view comparison.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	default:
		return 0, status.HTTPStatusf(400, "unknown method: %s", s)
	}
}
