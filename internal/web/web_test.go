package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/shiftclock/internal/factory"
	"github.com/mcoot/shiftclock/internal/testutil"
	"github.com/mcoot/shiftclock/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a test server over the default roster
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteRoster(t, dir, testutil.DefaultRoster...)
	app := factory.NewTestApp(dir)
	t.Cleanup(func() { _ = app.Close() })

	router := web.NewRouter(web.RouterConfig{
		Logger:          testutil.NopLogger(),
		ShiftController: app.ShiftController,
		SessionService:  app.SessionService,
		Hub:             app.Hub,
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
	}
}

// browser returns another client of the same server with its own cookies
func (ts *webTestServer) browser() *webTestServer {
	return &webTestServer{
		t:       ts.t,
		handler: ts.handler,
		app:     ts.app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

// clockIn posts the clock-in form and expects the redirect back home
func (ts *webTestServer) clockIn(number string) *httptest.ResponseRecorder {
	ts.t.Helper()
	rr := ts.post("/clock_in", url.Values{"student_number": {number}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after clock-in")
	require.Equal(ts.t, "/", rr.Header().Get("Location"))
	return rr
}

// clockOut posts the clock-out form and expects the redirect back home
func (ts *webTestServer) clockOut(number string) *httptest.ResponseRecorder {
	ts.t.Helper()
	rr := ts.post("/clock_out", url.Values{"student_number": {number}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after clock-out")
	require.Equal(ts.t, "/", rr.Header().Get("Location"))
	return rr
}

// home loads and parses the index page
func (ts *webTestServer) home() *goquery.Document {
	ts.t.Helper()
	rr := ts.get("/")
	require.Equal(ts.t, http.StatusOK, rr.Code)
	return parseHTML(rr.Body)
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// ledgerRows returns the ledger's lines
func (ts *webTestServer) ledgerRows() []string {
	ts.t.Helper()
	return testutil.ReadLedgerRows(ts.t, ts.app.LedgerPath)
}

// Assertion helpers

// statusRow selects the status table row for a student number
func statusRow(doc *goquery.Document, number string) *goquery.Selection {
	return doc.Find(`#status-table tr[data-number="` + number + `"]`)
}

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

// assertClockedIn asserts the person's row shows them clocked in
func assertClockedIn(t *testing.T, doc *goquery.Document, number string) {
	t.Helper()
	row := statusRow(doc, number)
	require.Equal(t, 1, row.Length(), "Expected one status row for %s", number)
	if !row.HasClass("status-in") {
		t.Errorf("Expected %s to be clocked in, row class %q", number, row.AttrOr("class", ""))
	}
}

// assertClockedOut asserts the person's row shows them clocked out
func assertClockedOut(t *testing.T, doc *goquery.Document, number string) {
	t.Helper()
	row := statusRow(doc, number)
	require.Equal(t, 1, row.Length(), "Expected one status row for %s", number)
	if !row.HasClass("status-out") {
		t.Errorf("Expected %s to be clocked out, row class %q", number, row.AttrOr("class", ""))
	}
}
