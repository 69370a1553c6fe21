package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/shiftclock/internal/api"
	"github.com/mcoot/shiftclock/internal/factory"
	"github.com/mcoot/shiftclock/internal/testutil"
	"github.com/mcoot/shiftclock/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "shiftclock-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/shiftclock")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "SHIFTCLOCK_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr       string
	ledgerPath string
	shutdown   func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	dir := t.TempDir()
	rosterPath := testutil.WriteRoster(t, dir, testutil.DefaultRoster...)
	ledgerPath := filepath.Join(dir, "clock_in_data.csv")

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{
		RosterPath:    rosterPath,
		LedgerPath:    ledgerPath,
		SessionConfig: factory.TestSessionConfig(),
		Logger:        logger,
	})
	require.NoError(t, err)

	// Create routers
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		ShiftController: app.ShiftController,
		SessionService:  app.SessionService,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:          logger,
		ShiftController: app.ShiftController,
		SessionService:  app.SessionService,
		Hub:             app.Hub,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, api.DefaultServerConfig(), logger)

	// Start server
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr:       serverURL,
		ledgerPath: ledgerPath,
		shutdown: func() {
			app.Hub.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status string `json:"status"`
}

type sessionResponse struct {
	SessionToken string `json:"session_token"`
}

type peopleResponse struct {
	People []struct {
		Number    string `json:"number"`
		Name      string `json:"name"`
		ClockedIn bool   `json:"clocked_in"`
		Since     string `json:"since"`
	} `json:"people"`
}

type clockEventResponse struct {
	Number       string `json:"student_number"`
	Name         string `json:"name"`
	EventID      string `json:"event_id"`
	ClockInTime  string `json:"clock_in_time"`
	ClockOutTime string `json:"clock_out_time"`
	Status       string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SessionSavedToTokenFile(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("session", "new")
	require.NoError(t, err, "output: %s", output)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.NotEmpty(t, resp.SessionToken)

	saved, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionToken, string(saved))

	// Token file is picked up by later commands
	output, err = cli.run("people")
	require.NoError(t, err, "output: %s", output)
}

func TestCLI_ClockFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("session", "new")
	require.NoError(t, err, "output: %s", output)

	// Clock in
	output, err = cli.run("clock-in", "--number", "1002")
	require.NoError(t, err, "output: %s", output)

	var in clockEventResponse
	require.NoError(t, json.Unmarshal([]byte(output), &in))
	assert.Equal(t, "1002", in.Number)
	assert.Equal(t, "John Smith", in.Name)
	assert.Equal(t, "clock-in", in.Status)
	assert.Len(t, in.EventID, 8)

	// Roster shows the change
	output, err = cli.run("people")
	require.NoError(t, err, "output: %s", output)

	var people peopleResponse
	require.NoError(t, json.Unmarshal([]byte(output), &people))
	require.Len(t, people.People, 3)
	assert.False(t, people.People[0].ClockedIn)
	assert.True(t, people.People[1].ClockedIn)
	assert.Equal(t, in.ClockInTime, people.People[1].Since)

	// Clocking in again is rejected
	output, err = cli.run("clock-in", "--number", "1002")
	require.Error(t, err)
	assert.Contains(t, output, "ALREADY_CLOCKED_IN")

	// Clock out
	output, err = cli.run("clock-out", "--number", "1002")
	require.NoError(t, err, "output: %s", output)

	var out clockEventResponse
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, in.EventID, out.EventID)
	assert.Equal(t, "clock-out", out.Status)
	assert.NotEmpty(t, out.ClockOutTime)

	rows := testutil.ReadLedgerRows(t, ts.ledgerPath)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], ",clock-out")
}

func TestCLI_Errors(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// No session yet
	output, err := cli.run("people")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	output, err = cli.run("session", "new")
	require.NoError(t, err, "output: %s", output)
	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))

	// Unknown person
	output, err = cli.runWithToken(session.SessionToken, "clock-in", "--number", "9999")
	require.Error(t, err)
	assert.Contains(t, output, "PERSON_NOT_FOUND")

	// Not clocked in
	output, err = cli.runWithToken(session.SessionToken, "clock-out", "--number", "1001")
	require.Error(t, err)
	assert.Contains(t, output, "NOT_CLOCKED_IN")

	// Missing flag
	_, err = cli.runWithToken(session.SessionToken, "clock-in")
	require.Error(t, err)

	assert.Nil(t, testutil.ReadLedgerRows(t, ts.ledgerPath))
}
