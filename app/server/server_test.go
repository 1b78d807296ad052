package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"snapsight/app/client/vision"
	"snapsight/app/config"
	"snapsight/app/service/analyzer"
	"snapsight/app/service/chat"
	"snapsight/app/service/history"
	"snapsight/app/service/queue"
	"snapsight/app/service/storage"
	"snapsight/app/util/dataurl"
	"strings"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Analyze(_ context.Context, _ dataurl.Image) (string, error) {
	return "B", nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "test.bolt")

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.ProvideValue(di, cfg)
	do.Provide(di, storage.New)
	do.Provide(di, queue.New)
	do.Provide(di, chat.New)
	do.Provide(di, history.New)
	do.ProvideValue[vision.Provider](di, stubProvider{})
	do.Provide(di, analyzer.New)
	do.Provide(di, New)

	return do.MustInvoke[*Server](di)
}

func doJSON(t *testing.T, s *Server, method, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))

	return resp.StatusCode, parsed
}

func TestAnalyzeAck(t *testing.T) {
	s := newTestServer(t)

	status, body := doJSON(t, s, http.MethodPost, "/api/analyze",
		`{"screenshot":"data:image/png;base64,aGk=","tabUrl":"https://example.com"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestAnalyzeRequiresScreenshot(t *testing.T) {
	s := newTestServer(t)

	status, body := doJSON(t, s, http.MethodPost, "/api/analyze", `{"tabUrl":"https://example.com"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)

	status, body := doJSON(t, s, http.MethodGet, "/api/status", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["isProcessing"])
	assert.Equal(t, "", body["badge"])
}

func TestListAndRemoveResponses(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.historySvc.Append(history.Record{ID: "1", Response: "A"}))
	require.NoError(t, s.historySvc.Append(history.Record{ID: "2", Response: "B"}))

	status, body := doJSON(t, s, http.MethodGet, "/api/responses", "")
	require.Equal(t, http.StatusOK, status)

	responses := body["responses"].([]any)
	require.Len(t, responses, 2)
	assert.Equal(t, "2", responses[0].(map[string]any)["id"])

	status, _ = doJSON(t, s, http.MethodDelete, "/api/responses/1", "")
	require.Equal(t, http.StatusOK, status)

	_, body = doJSON(t, s, http.MethodGet, "/api/responses", "")
	assert.Len(t, body["responses"].([]any), 1)
}

func TestClearResponsesAlsoResetsChat(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.historySvc.Append(history.Record{ID: "1", Response: "A"}))
	require.NoError(t, s.chatSvc.Save([]chat.Turn{{Role: chat.RoleUser, Content: "hi"}}))

	status, body := doJSON(t, s, http.MethodDelete, "/api/responses", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	_, listBody := doJSON(t, s, http.MethodGet, "/api/responses", "")
	assert.Empty(t, listBody["responses"].([]any))

	turns, err := s.chatSvc.Load()
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestResetChat(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.chatSvc.Save([]chat.Turn{{Role: chat.RoleUser, Content: "hi"}}))

	status, body := doJSON(t, s, http.MethodPost, "/api/chat/reset", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	turns, err := s.chatSvc.Load()
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestClearBadge(t *testing.T) {
	s := newTestServer(t)

	status, body := doJSON(t, s, http.MethodDelete, "/api/badge", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}
