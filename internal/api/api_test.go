package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/shiftclock/internal/api"
	"github.com/mcoot/shiftclock/internal/api/apierr"
	"github.com/mcoot/shiftclock/internal/api/response"
	"github.com/mcoot/shiftclock/internal/factory"
	"github.com/mcoot/shiftclock/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteRoster(t, dir, testutil.DefaultRoster...)
	app := factory.NewTestApp(dir)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		ShiftController: app.ShiftController,
		SessionService:  app.SessionService,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func clockBody(number string) map[string]string {
	return map[string]string{"student_number": number}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.SessionToken, ".")

	// Token is usable straight away
	rr = ts.request(http.MethodGet, "/api/v1/people", nil, resp.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/people", "/api/v1/clock-in", "/api/v1/clock-out"} {
		method := http.MethodPost
		if path == "/api/v1/people" {
			method = http.MethodGet
		}
		rr := ts.request(method, path, clockBody("1001"), "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assertErrorCode(t, rr, apierr.CodeUnauthorized)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	tampered := "x" + token[1:]
	rr := ts.request(http.MethodGet, "/api/v1/people", nil, tampered)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assertErrorCode(t, rr, apierr.CodeUnauthorized)

	rr = ts.request(http.MethodGet, "/api/v1/people", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestExpiredSessionRejected(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	ts.app.MockClock.Advance(2 * time.Hour)

	rr := ts.request(http.MethodGet, "/api/v1/people", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionCookieAccepted(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/people", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func (ts *testServer) cookieRequest(method, path, contentType, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: token})

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestCookieAuthRequiresJSONForWrites(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)
	body := `{"student_number":"1001"}`

	// What a cross-site form can send
	for _, contentType := range []string{"text/plain", "application/x-www-form-urlencoded", ""} {
		rr := ts.cookieRequest(http.MethodPost, "/api/v1/clock-in", contentType, body, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code, contentType)
		assertErrorCode(t, rr, apierr.CodeInvalidRequest)
	}
	assert.Nil(t, testutil.ReadLedgerRows(t, ts.app.LedgerPath))

	rr := ts.cookieRequest(http.MethodPost, "/api/v1/clock-in", "application/json; charset=utf-8", body, token)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Len(t, testutil.ReadLedgerRows(t, ts.app.LedgerPath), 1)
}

func TestBearerAuthAcceptsAnyContentType(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clock-in", strings.NewReader(`{"student_number":"1002"}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestListPeople(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	people := listPeople(t, ts, token)
	require.Len(t, people, 3)
	assert.Equal(t, "1001", people[0].Number)
	assert.Equal(t, "Jane Doe", people[0].Name)
	assert.Equal(t, "1003", people[2].Number)
	for _, p := range people {
		assert.False(t, p.ClockedIn)
		assert.Empty(t, p.Since)
	}
}

func TestClockInOutFlow(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)
	ts.app.MockRandom.QueueShortID("a1b2c3d4")

	// Clock in
	rr := ts.request(http.MethodPost, "/api/v1/clock-in", clockBody("1001"), token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var in response.ClockEvent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &in))
	assert.Equal(t, "1001", in.Number)
	assert.Equal(t, "Jane Doe", in.Name)
	assert.Equal(t, "a1b2c3d4", in.EventID)
	assert.Equal(t, "09:00:00 15-01-2024", in.ClockInTime)
	assert.Empty(t, in.ClockOutTime)
	assert.Equal(t, "clock-in", in.Status)

	people := listPeople(t, ts, token)
	assert.True(t, people[0].ClockedIn)
	assert.Equal(t, "09:00:00 15-01-2024", people[0].Since)
	assert.Equal(t, "a1b2c3d4", people[0].EventID)
	assert.False(t, people[1].ClockedIn)

	// Clock out later
	ts.app.MockClock.Advance(30 * time.Minute)
	rr = ts.request(http.MethodPost, "/api/v1/clock-out", clockBody("1001"), token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out response.ClockEvent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "a1b2c3d4", out.EventID)
	assert.Equal(t, "09:30:00 15-01-2024", out.ClockOutTime)
	assert.Equal(t, "clock-out", out.Status)

	assert.Equal(t, []string{
		"1001,Jane Doe,a1b2c3d4,09:00:00 15-01-2024,09:30:00 15-01-2024,clock-out",
	}, testutil.ReadLedgerRows(t, ts.app.LedgerPath))

	people = listPeople(t, ts, token)
	assert.False(t, people[0].ClockedIn)
}

func TestClockInTwiceConflicts(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/clock-in", clockBody("1002"), token)
	require.Equal(t, http.StatusCreated, rr.Code)

	// A second client sees the same conflict
	other := createSession(t, ts)
	rr = ts.request(http.MethodPost, "/api/v1/clock-in", clockBody("1002"), other)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assertErrorCode(t, rr, apierr.CodeAlreadyClockedIn)

	assert.Len(t, testutil.ReadLedgerRows(t, ts.app.LedgerPath), 1)
}

func TestClockOutWhenNotClockedIn(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/clock-out", clockBody("1003"), token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assertErrorCode(t, rr, apierr.CodeNotClockedIn)
	assert.Nil(t, testutil.ReadLedgerRows(t, ts.app.LedgerPath))
}

func TestClockInUnknownPerson(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/clock-in", clockBody("9999"), token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assertErrorCode(t, rr, apierr.CodePersonNotFound)
	assert.Nil(t, testutil.ReadLedgerRows(t, ts.app.LedgerPath))
}

func TestClockInvalidRequests(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	tests := []struct {
		name string
		body any
	}{
		{"missing number", map[string]string{}},
		{"blank number", clockBody("   ")},
		{"malformed json", `{"student_number":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/clock-in", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assertErrorCode(t, rr, apierr.CodeInvalidRequest)
		})
	}
}

func TestClockInSharesStateWithOtherSurfaces(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	// Clocked in without going through the API
	_, err := ts.app.ShiftController.ClockIn(t.Context(), nil, "1003")
	require.NoError(t, err)

	people := listPeople(t, ts, token)
	assert.True(t, people[2].ClockedIn)

	rr := ts.request(http.MethodPost, "/api/v1/clock-out", clockBody("1003"), token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	token := createSession(t, ts)

	rr := ts.request(http.MethodGet, "/api/v1/clock-in", nil, token)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// Helper functions

func createSession(t *testing.T, ts *testServer) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.SessionToken
}

func listPeople(t *testing.T, ts *testServer, token string) []response.Person {
	t.Helper()
	rr := ts.request(http.MethodGet, "/api/v1/people", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.PeopleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.People
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	assert.Equal(t, code, resp.Error.Code)
}
