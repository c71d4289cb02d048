package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
)

// QueryString returns the trimmed query value, rejecting values longer than maxLen.
func QueryString(r *http.Request, key string, maxLen int) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if maxLen > 0 && len(raw) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return raw, nil
}
