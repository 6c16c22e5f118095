package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/config"
	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/search"
	"github.com/samefarrar/inkwell/internal/testutil"
)

// stubClient satisfies llm.Client for routes that never reach the model.
type stubClient struct {
	completeFn func(req llm.CompleteRequest) (*llm.CompleteResponse, error)
	streamFn   func(req llm.CompleteRequest, onChunk llm.ChunkFunc) (*llm.CompleteResponse, error)
}

func (c *stubClient) Complete(ctx context.Context, req llm.CompleteRequest) (*llm.CompleteResponse, error) {
	if c.completeFn == nil {
		return &llm.CompleteResponse{}, nil
	}
	return c.completeFn(req)
}

func (c *stubClient) StreamComplete(ctx context.Context, req llm.CompleteRequest, onChunk llm.ChunkFunc) (*llm.CompleteResponse, error) {
	if c.streamFn == nil {
		return &llm.CompleteResponse{}, nil
	}
	return c.streamFn(req, onChunk)
}

func (c *stubClient) Available(ctx context.Context) bool { return true }

func testConfig() config.Server {
	return config.Server{
		Addr:           "127.0.0.1:0",
		JWTSecret:      strings.Repeat("s", 32),
		AllowedOrigins: []string{"http://localhost:5173"},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	db := testutil.NewTestDB(t)
	s := New(testConfig(), db, &stubClient{}, search.Disabled{}, slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, s
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), "body: %s", data)
}

// registerUser creates an account through the API and returns the token.
func registerUser(t *testing.T, baseURL, email string) string {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/auth/register", map[string]string{
		"email": email, "name": "Test Writer", "password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_SetsCookieAndReturnsToken(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/auth/register", map[string]string{
		"email": "Writer@Example.com", "name": "W", "password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sawCookie bool
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" && c.Value != "" {
			sawCookie = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, sawCookie)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Plan  string `json:"plan"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	// Emails are normalized on the way in.
	assert.Equal(t, "writer@example.com", body.User.Email)
	assert.Equal(t, "free", body.User.Plan)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts.URL, "dup@example.com")

	resp := postJSON(t, ts.URL+"/api/auth/register", map[string]string{
		"email": "dup@example.com", "password": "hunter2hunter2",
	}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/auth/register", map[string]string{
		"email": "short@example.com", "password": "short",
	}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_RoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts.URL, "login@example.com")

	resp := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"email": "login@example.com", "password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts.URL, "login2@example.com")

	resp := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"email": "login2@example.com", "password": "wrongpassword",
	}, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "hunter2hunter2",
	}, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe_RequiresAuth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := getJSON(t, ts.URL+"/api/auth/me", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe_ReturnsProfile(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerUser(t, ts.URL, "me@example.com")

	resp := getJSON(t, ts.URL+"/api/auth/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Email string `json:"email"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "me@example.com", body.Email)
}

func TestMe_RejectsTokenSignedWithWrongSecret(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts.URL, "victim@example.com")

	other := NewAuthenticator(nil, strings.Repeat("x", 32))
	forged, err := other.CreateToken(&domain.User{ID: "someone", Email: "victim@example.com"})
	require.NoError(t, err)

	resp := getJSON(t, ts.URL+"/api/auth/me", forged)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessions_ListEmpty(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerUser(t, ts.URL, "sessions@example.com")

	resp := getJSON(t, ts.URL+"/api/sessions", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body []map[string]any
	decodeBody(t, resp, &body)
	assert.Empty(t, body)
}

func TestLatestSession_NotFoundWithoutDrafts(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerUser(t, ts.URL, "latest@example.com")

	resp := getJSON(t, ts.URL+"/api/sessions/latest", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Found bool `json:"found"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Found)
}

func TestSessionDetail_RejectsForeignSession(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerUser(t, ts.URL, "owner@example.com")
	intruder := registerUser(t, ts.URL, "intruder@example.com")
	_ = token

	resp := getJSON(t, ts.URL+"/api/sessions/some-session-id", intruder)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStyles_CreateListGet(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerUser(t, ts.URL, "styles@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	resp := postJSON(t, ts.URL+"/api/styles", map[string]string{
		"name": "Punchy Newsletter", "description": "Short sentences.", "tone": "direct",
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.ID)

	resp = getJSON(t, ts.URL+"/api/styles", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	sampleResp := postJSON(t, ts.URL+"/api/styles/"+created.ID+"/samples", map[string]string{
		"title": "Issue 12", "content": "Ship early. Ship often. Tell people.",
	}, auth)
	require.Equal(t, http.StatusCreated, sampleResp.StatusCode)
	var sample struct {
		WordCount int `json:"word_count"`
	}
	decodeBody(t, sampleResp, &sample)
	assert.Equal(t, 7, sample.WordCount)

	resp = getJSON(t, ts.URL+"/api/styles/"+created.ID, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		Name    string           `json:"name"`
		Samples []map[string]any `json:"samples"`
	}
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Punchy Newsletter", detail.Name)
	assert.Len(t, detail.Samples, 1)
}

func TestStyles_OwnershipEnforced(t *testing.T) {
	ts, _ := newTestServer(t)
	owner := registerUser(t, ts.URL, "styleowner@example.com")
	intruder := registerUser(t, ts.URL, "styleintruder@example.com")

	resp := postJSON(t, ts.URL+"/api/styles", map[string]string{"name": "Mine"},
		map[string]string{"Authorization": "Bearer " + owner})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)

	resp = getJSON(t, fmt.Sprintf("%s/api/styles/%s", ts.URL, created.ID), intruder)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
