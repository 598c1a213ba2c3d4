package request

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// PathID returns the named path value, validated as a UUID. Session, game
// and participant identifiers are all UUIDs on the wire.
func PathID(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", fmt.Errorf("%s must be a valid id", name)
	}
	return value, nil
}

// QueryValue returns a trimmed query parameter, with ok reporting presence.
func QueryValue(r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	return value, value != ""
}
