package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"reverie/internal/config"
	"reverie/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	backend    *fakeBackend
	configPath string
}

// fakeBackend records compile-story submissions and answers with a canned
// status and body.
type fakeBackend struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []string
	status   int
	body     string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{status: http.StatusOK, body: `{"video_url":"/outputs/story_test.mp4"}`}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		fb.mu.Lock()
		if r.URL.Path == "/api/compile-story" {
			fb.requests = append(fb.requests, buf.String())
		}
		status, body := fb.status, fb.body
		fb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fb.server.Close)
	return fb
}

func (f *fakeBackend) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

func (f *fakeBackend) compileRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"REVERIE_API_BASE", "REVERIE_API_TOKEN", "REVERIE_REDIS_ADDR", "REVERIE_REDIS_PASSWORD", "REVERIE_NTFY_TOPIC"} {
		t.Setenv(key, "")
	}

	fb := newFakeBackend(t)
	opts = append([]testsupport.ConfigOption{testsupport.WithBackendURL(fb.server.URL + "/api")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "reverie", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, backend: fb, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd, session := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	if closeErr := session.close(); closeErr != nil {
		t.Errorf("close session: %v", closeErr)
	}
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[backend]\nbase_url = %q\ntimeout_seconds = %d\n\n[store]\nbackend = %q\npath = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Backend.BaseURL,
		cfg.Backend.TimeoutSeconds,
		cfg.Store.Backend,
		cfg.Store.Path,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
