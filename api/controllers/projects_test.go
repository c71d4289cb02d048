package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/projects"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

func newProjectService(t *testing.T) projects.Service {
	t.Helper()
	svc, err := projects.NewService(kv.NewMemoryStore(), logger.Nop())
	require.NoError(t, err)
	return svc
}

type projectEnvelope struct {
	Project projects.Project `json:"project"`
}

func createProject(t *testing.T, svc projects.Service, body string) projects.Project {
	t.Helper()
	rec := httptest.NewRecorder()
	ProjectCreate(svc, logger.Nop()).ServeHTTP(rec, jsonRequest(http.MethodPost, "/projects", body, &projectManager))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[projectEnvelope](t, rec).Project
}

func TestProjectCreateForbiddenForEngineerAndObserver(t *testing.T) {
	svc := newProjectService(t)
	for _, user := range []identity.User{engineer, observer} {
		rec := httptest.NewRecorder()
		ProjectCreate(svc, logger.Nop()).ServeHTTP(rec, jsonRequest(http.MethodPost, "/projects", `{"name":"Route 9"}`, &user))
		assert.Equal(t, http.StatusForbidden, rec.Code, string(user.Role))
		assert.Equal(t, string(pkgerrors.CodeForbidden), errorCode(t, rec))
	}
}

func TestProjectCreateRejectsUnknownStatus(t *testing.T) {
	svc := newProjectService(t)
	rec := httptest.NewRecorder()
	ProjectCreate(svc, logger.Nop()).ServeHTTP(rec, jsonRequest(http.MethodPost, "/projects", `{"name":"Route 9","status":"paused"}`, &projectManager))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectGetAndNotFound(t *testing.T) {
	svc := newProjectService(t)
	created := createProject(t, svc, `{"name":"Bridge","location":"Km 12"}`)

	rec := httptest.NewRecorder()
	ProjectGet(svc, logger.Nop()).ServeHTTP(rec, withURLParams(jsonRequest(http.MethodGet, "/projects/"+created.ID, "", &observer), "projectId", created.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bridge", decodeBody[projectEnvelope](t, rec).Project.Name)

	rec = httptest.NewRecorder()
	ProjectGet(svc, logger.Nop()).ServeHTTP(rec, withURLParams(jsonRequest(http.MethodGet, "/projects/missing", "", &observer), "projectId", "missing"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectUpdateReplacesAttachments(t *testing.T) {
	svc := newProjectService(t)
	created := createProject(t, svc, `{"name":"Bypass","attachments":["a.pdf","b.pdf"]}`)

	rec := httptest.NewRecorder()
	req := withURLParams(jsonRequest(http.MethodPut, "/projects/"+created.ID, `{"attachments":["c.pdf"],"progress":40}`, &generalManager), "projectId", created.ID)
	ProjectUpdate(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[projectEnvelope](t, rec).Project
	assert.Equal(t, []string{"c.pdf"}, updated.Attachments)
	assert.Equal(t, 40, updated.Progress)
	assert.Equal(t, "Bypass", updated.Name)
}

func TestProjectDeleteOnlyGeneralManagerAndIdempotent(t *testing.T) {
	svc := newProjectService(t)
	created := createProject(t, svc, `{"name":"Overpass"}`)

	for _, user := range []identity.User{projectManager, engineer, observer} {
		rec := httptest.NewRecorder()
		ProjectDelete(svc, logger.Nop()).ServeHTTP(rec, withURLParams(jsonRequest(http.MethodDelete, "/projects/"+created.ID, "", &user), "projectId", created.ID))
		assert.Equal(t, http.StatusForbidden, rec.Code, string(user.Role))
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		ProjectDelete(svc, logger.Nop()).ServeHTTP(rec, withURLParams(jsonRequest(http.MethodDelete, "/projects/"+created.ID, "", &generalManager), "projectId", created.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody[map[string]any](t, rec)["success"])
	}
}

func TestProjectListFiltersByOwnership(t *testing.T) {
	svc := newProjectService(t)
	createProject(t, svc, `{"name":"Mine","teamMembers":["en-1"]}`)
	createProject(t, svc, `{"name":"Other"}`)

	rec := httptest.NewRecorder()
	ProjectList(svc, logger.Nop()).ServeHTTP(rec, jsonRequest(http.MethodGet, "/projects", "", &engineer))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Projects []projects.Project `json:"projects"`
	}](t, rec).Projects
	require.Len(t, list, 1)
	assert.Equal(t, "Mine", list[0].Name)

	rec = httptest.NewRecorder()
	ProjectList(svc, logger.Nop()).ServeHTTP(rec, jsonRequest(http.MethodGet, "/projects", "", &observer))
	list = decodeBody[struct {
		Projects []projects.Project `json:"projects"`
	}](t, rec).Projects
	assert.Len(t, list, 2)
}
