package controllers

import (
	"net/http"

	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/api/validators"
	"github.com/angelmondragon/roadtrack-backend/internal/reports"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

// ReportList returns a project's daily reports, newest first.
func ReportList(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := pathParam(w, r, logg, "projectId", "project id")
		if !ok {
			return
		}
		ctx := logg.WithProjectID(r.Context(), projectID)

		items, err := svc.ListByProject(ctx, projectID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"reports": items})
	}
}

func ReportCreate(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		projectID, ok := pathParam(w, r, logg, "projectId", "project id")
		if !ok {
			return
		}
		ctx := logg.WithProjectID(r.Context(), projectID)

		var body reports.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := svc.Create(ctx, actor, projectID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"report": report})
	}
}

// ReportSetStatus approves a report located by id alone.
func ReportSetStatus(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		reportID, ok := pathParam(w, r, logg, "reportId", "report id")
		if !ok {
			return
		}
		ctx := logg.WithField(r.Context(), "report_id", reportID)

		var body reports.StatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := svc.SetStatus(ctx, actor, reportID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"report": report})
	}
}
