package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worldloom-backend/interfaces/http/rest/handlers"
	"worldloom-backend/internal/config"
	"worldloom-backend/internal/messaging"
	"worldloom-backend/internal/observability"
	"worldloom-backend/internal/repository/memory"
	"worldloom-backend/internal/service/browse"
	"worldloom-backend/internal/service/element"
	"worldloom-backend/internal/service/project"
	"worldloom-backend/internal/service/relationship"
	"worldloom-backend/internal/service/search"
	"worldloom-backend/internal/service/transfer"
	appErrors "worldloom-backend/pkg/errors"
)

// newTestRouter wires the whole HTTP surface against the in-memory store
// with authentication disabled.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	bus := messaging.NewNoopBus()
	errorHandler := appErrors.NewErrorHandler(logger)

	projectSvc := project.NewService(store, store, bus, logger)
	elementSvc := element.NewService(store, store, store, store, bus, logger)
	relationshipSvc := relationship.NewService(store, store, bus, logger)
	browseSvc := browse.NewService(elementSvc)
	searcher := search.NewSearcher(search.NewService(store, store, logger))
	history := search.NewHistory(store, search.DefaultHistorySize)
	transferSvc := transfer.NewService(store, store, store, logger)

	cfg := config.Default(config.Development)
	cfg.Security.EnableAuth = false

	return NewRouter(cfg, Handlers{
		Projects:      handlers.NewProjectHandler(projectSvc, errorHandler, logger),
		Elements:      handlers.NewElementHandler(elementSvc, browseSvc, errorHandler, logger),
		Relationships: handlers.NewRelationshipHandler(relationshipSvc, errorHandler, logger),
		Search:        handlers.NewSearchHandler(searcher, history, errorHandler, logger),
		Transfer:      handlers.NewTransferHandler(transferSvc, errorHandler, logger),
		Diagnostics:   handlers.NewDiagnosticsHandler(nil, errorHandler, logger),
		Health:        handlers.NewHealthHandler("test", nil),
	}, nil, observability.NewCollector("worldloom"), logger)
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createProject(t *testing.T, router chi.Router, name string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

func createElement(t *testing.T, router chi.Router, projectID, category, name string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/elements", projectID), map[string]interface{}{
		"category": category,
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjectEndpoints(t *testing.T) {
	router := newTestRouter(t)

	projectID := createProject(t, router, "Eldoria")

	t.Run("list includes the project", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/projects", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Eldoria")
	})

	t.Run("rejects blank name", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]string{"name": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown project is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/projects/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete rejects non-empty project", func(t *testing.T) {
		createElement(t, router, projectID, "character", "Mira")
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/projects/"+projectID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestElementEndpoints(t *testing.T) {
	router := newTestRouter(t)
	projectID := createProject(t, router, "Eldoria")

	elementID := createElement(t, router, projectID, "character", "Mira")
	createElement(t, router, projectID, "location", "Harborfall")

	t.Run("browse with category filter", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/elements?category=character", projectID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Elements []struct {
				Name string `json:"name"`
			} `json:"elements"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Elements, 1)
		assert.Equal(t, "Mira", body.Elements[0].Name)
	})

	t.Run("browse rejects unknown sort", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/elements?sort=bogus", projectID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects invalid category", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/elements", projectID), map[string]string{
			"category": "vehicle",
			"name":     "Sky Barge",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("answer updates completion", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/v1/projects/%s/elements/%s/answers/char-appearance", projectID, elementID),
			map[string]string{"answer": "tall and windburned"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Completion float64 `json:"completion"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Greater(t, body.Completion, 0.0)
	})

	t.Run("answer outside template is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/v1/projects/%s/elements/%s/answers/not-a-question", projectID, elementID),
			map[string]string{"answer": "anything"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("categories listing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/categories", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "character")
	})
}

func TestRelationshipEndpoints(t *testing.T) {
	router := newTestRouter(t)
	projectID := createProject(t, router, "Eldoria")
	mira := createElement(t, router, projectID, "character", "Mira")
	guild := createElement(t, router, projectID, "organization", "Mapmakers Guild")

	t.Run("bidirectional create returns the mirror", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/relationships", projectID), map[string]interface{}{
			"source_id":     mira,
			"target_id":     guild,
			"type":          "member_of",
			"bidirectional": true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body struct {
			Relationship struct {
				Type string `json:"type"`
			} `json:"relationship"`
			Reverse *struct {
				Type string `json:"type"`
			} `json:"reverse"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "member_of", body.Relationship.Type)
		require.NotNil(t, body.Reverse)
		assert.Equal(t, "has_member", body.Reverse.Type)
	})

	t.Run("self link is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/relationships", projectID), map[string]interface{}{
			"source_id": mira,
			"target_id": mira,
			"type":      "ally_of",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("element relationships are direction tagged", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/elements/%s/relationships", projectID, guild), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"direction":"outgoing"`)
		assert.Contains(t, rec.Body.String(), `"direction":"incoming"`)
		assert.Contains(t, rec.Body.String(), "is member_of of")
	})

	t.Run("grouped listing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/relationships?group=source", projectID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Groups map[string][]json.RawMessage `json:"groups"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Groups, 2) // forward + mirror each have one source
	})

	t.Run("suggested types listing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/relationship-types", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "parent_of")
	})
}

func TestSearchEndpoints(t *testing.T) {
	router := newTestRouter(t)
	projectID := createProject(t, router, "Eldoria Chronicles")
	createElement(t, router, projectID, "character", "Mira")

	t.Run("projects come before elements", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/search?q=eldoria", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"project"`)
	})

	t.Run("search records history", func(t *testing.T) {
		doJSON(t, router, http.MethodGet, "/api/v1/search?q=mira", nil)

		rec := doJSON(t, router, http.MethodGet, "/api/v1/search/recent", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Recent []string `json:"recent"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.Recent)
		assert.Equal(t, "mira", body.Recent[0])
	})

	t.Run("clear history", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/v1/search/recent", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("blank query is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/search?q=", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransferEndpoints(t *testing.T) {
	router := newTestRouter(t)
	projectID := createProject(t, router, "Eldoria")
	createElement(t, router, projectID, "character", "Mira")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "worldloom-export.json")

	var archive struct {
		Version  int `json:"version"`
		Projects []struct {
			Name string `json:"name"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archive))
	assert.Equal(t, 1, archive.Version)
	require.Len(t, archive.Projects, 1)

	t.Run("round trip into a fresh router", func(t *testing.T) {
		fresh := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(rec.Body.Bytes()))
		importRec := httptest.NewRecorder()
		fresh.ServeHTTP(importRec, req)
		require.Equal(t, http.StatusOK, importRec.Code, importRec.Body.String())

		var result struct {
			Projects int `json:"projects"`
			Elements int `json:"elements"`
		}
		require.NoError(t, json.Unmarshal(importRec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Projects)
		assert.Equal(t, 1, result.Elements)
	})

	t.Run("import rejects missing fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/import", map[string]interface{}{"projects": []string{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDiagnosticsUnconfigured(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/diagnostics/run", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
