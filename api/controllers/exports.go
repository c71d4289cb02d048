package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/api/validators"
	"github.com/angelmondragon/roadtrack-backend/internal/exports"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

type ExportService interface {
	FileName(typ enums.ExportType, period string) string
	Write(ctx context.Context, w io.Writer, actor identity.User, typ enums.ExportType, period string) error
}

// ExportProjectsCSV renders the report into memory first so a failure still
// produces a JSON error instead of a truncated download.
func ExportProjectsCSV(svc ExportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		rawType, err := validators.QueryString(r, "type", 32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		typ, err := exports.ParseType(rawType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := validators.QueryString(r, "period", 32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := svc.Write(r.Context(), &buf, actor, typ, period); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, svc.FileName(typ, period)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
