package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports "healthy" when every dependency answers a ping, "degraded" with
// a 503 otherwise. Nil pingers are skipped.
func Health(checks map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name, p := range checks {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Checks:    make(map[string]string, len(names)),
		}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health.check_failed", err)
				}
				continue
			}
			resp.Checks[name] = "up"
		}

		responses.WriteSuccessStatus(w, status, resp)
	}
}
