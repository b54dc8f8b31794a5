package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func stubBackend(t *testing.T, routes map[string]string) {
	t.Helper()
	oldTransport := http.DefaultTransport
	http.DefaultTransport = roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		key := r.Method + " " + r.URL.Path
		body, ok := routes[key]
		if !ok {
			return newResponse(404, `{"error":"not found"}`, nil, r), nil
		}
		return newResponse(200, body, nil, r), nil
	})
	t.Cleanup(func() { http.DefaultTransport = oldTransport })
}

func writeSessionToken(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, "hashed-risk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("tok\n"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

func TestRunMainTokenLoginAndLogout(t *testing.T) {
	tempConfigDir(t)
	stubBackend(t, map[string]string{
		"POST /api/auth/google/callback": `{"token":"tok","user":{"id":1,"name":"Dana"}}`,
		"POST /api/auth/logout":          `{"message":"ok"}`,
	})

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain([]string{"--token", "authcode"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("runMain --token error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Signed in as Dana") {
		t.Fatalf("expected sign-in output, got %q", stdout.String())
	}

	stdout.Reset()
	if err := runMain([]string{"--logout"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("runMain --logout error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Signed out") {
		t.Fatalf("expected sign-out output, got %q", stdout.String())
	}
}

func TestRunMainTokenMissingValue(t *testing.T) {
	tempConfigDir(t)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain([]string{"--token"}, strings.NewReader(""), &stdout, &stderr); err == nil {
		t.Fatalf("expected missing token error")
	}
	if !strings.Contains(stderr.String(), "missing token value") {
		t.Fatalf("expected missing token output")
	}
}

func TestRunMainLoginFlow(t *testing.T) {
	tempConfigDir(t)
	stubBackend(t, map[string]string{
		"GET /api/auth/google":           `{"auth_url":"https://accounts.google.test/auth"}`,
		"POST /api/auth/google/callback": `{"token":"tok","user":{"id":1,"name":"Dana"}}`,
	})
	origOpen := openURL
	openURL = func(string) error { return nil }
	t.Cleanup(func() { openURL = origOpen })

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain([]string{"--login"}, strings.NewReader("authcode\n"), &stdout, &stderr); err != nil {
		t.Fatalf("runMain --login error: %v", err)
	}
	if !strings.Contains(stdout.String(), "accounts.google.test") {
		t.Fatalf("expected auth url printed")
	}
	if !strings.Contains(stdout.String(), "Signed in as Dana") {
		t.Fatalf("expected sign-in output, got %q", stdout.String())
	}
}

func TestRunMainCollect(t *testing.T) {
	root := tempConfigDir(t)
	writeSessionToken(t, root)
	stubBackend(t, map[string]string{
		"GET /api/auth/me":            `{"id":1,"name":"Dana"}`,
		"POST /api/scheduler/collect": `{"message":"Collection started"}`,
	})

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain([]string{"--collect"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("runMain --collect error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Collection started") {
		t.Fatalf("expected collect output, got %q", stdout.String())
	}
}

func TestRunMainCollectRequiresSession(t *testing.T) {
	tempConfigDir(t)
	stubBackend(t, nil)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain([]string{"--collect"}, strings.NewReader(""), &stdout, &stderr); err == nil {
		t.Fatalf("expected session error")
	}
	if !strings.Contains(stderr.String(), "not signed in") {
		t.Fatalf("expected sign-in hint, got %q", stderr.String())
	}
}

func TestRunMainList(t *testing.T) {
	root := tempConfigDir(t)
	writeSessionToken(t, root)
	stubBackend(t, map[string]string{
		"GET /api/auth/me":   `{"id":1,"name":"Dana"}`,
		"GET /api/articles/": articlesPageBody,
	})

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain([]string{"--list"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("runMain --list error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Exchange breach") {
		t.Fatalf("expected article listing, got %q", stdout.String())
	}
}

func TestRunMainNonTTYFallback(t *testing.T) {
	root := tempConfigDir(t)
	writeSessionToken(t, root)
	stubBackend(t, map[string]string{
		"GET /api/auth/me":                  `{"id":1,"name":"Dana"}`,
		"GET /api/articles/":                articlesPageBody,
		"GET /api/articles/dashboard-stats": `{"risk_levels":{"red":0,"amber":1,"green":2},"status":{}}`,
		"GET /api/articles/workflow-stats":  `{"by_assignee":[],"unassigned_count":0}`,
		"GET /api/articles/categories":      `{"categories":[]}`,
	})

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain(nil, strings.NewReader("q\n"), &stdout, &stderr); err != nil {
		t.Fatalf("runMain fallback error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Risk Monitor") {
		t.Fatalf("expected dashboard header, got %q", stdout.String())
	}
}

func TestRunMainUsesTUI(t *testing.T) {
	tempConfigDir(t)
	stubBackend(t, nil)

	orig := runTUI
	called := false
	runTUI = func(*App) error {
		called = true
		return nil
	}
	t.Cleanup(func() { runTUI = orig })

	tty, err := os.Open("/dev/null")
	if err != nil {
		t.Fatalf("open /dev/null: %v", err)
	}
	defer tty.Close()

	if err := runMain(nil, tty, tty, &bytes.Buffer{}); err != nil {
		t.Fatalf("runMain error: %v", err)
	}
	if !called {
		t.Fatalf("expected runTUI call")
	}
}

func TestRunMainTUIError(t *testing.T) {
	tempConfigDir(t)
	stubBackend(t, nil)

	orig := runTUI
	runTUI = func(*App) error { return errors.New("tui fail") }
	t.Cleanup(func() { runTUI = orig })

	tty, err := os.Open("/dev/null")
	if err != nil {
		t.Fatalf("open /dev/null: %v", err)
	}
	defer tty.Close()

	if err := runMain(nil, tty, tty, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected tui error")
	}
}

func TestRunMainConfigError(t *testing.T) {
	root := tempConfigDir(t)
	path := filepath.Join(root, "hashed-risk", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(path, []byte("api_base_url: [broken"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if err := runMain(nil, strings.NewReader(""), &stdout, &stderr); err == nil {
		t.Fatalf("expected config error")
	}
	if !strings.Contains(stderr.String(), "config error") {
		t.Fatalf("expected config error output")
	}
}

func TestMainExit(t *testing.T) {
	root := tempConfigDir(t)
	path := filepath.Join(root, "hashed-risk", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(path, []byte("api_base_url: [broken"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}

	called := 0
	orig := exitFunc
	exitFunc = func(code int) { called = code }
	t.Cleanup(func() { exitFunc = orig })

	origArgs := os.Args
	os.Args = []string{"hashed-risk"}
	t.Cleanup(func() { os.Args = origArgs })

	main()
	if called != 1 {
		t.Fatalf("expected exit code 1")
	}
}

func TestIsTerminalHelpers(t *testing.T) {
	if isTerminalReader(strings.NewReader("x")) {
		t.Fatalf("expected non-terminal reader")
	}
	if isTerminalWriter(&bytes.Buffer{}) {
		t.Fatalf("expected non-terminal writer")
	}

	tty, err := os.Open("/dev/null")
	if err != nil {
		t.Fatalf("open /dev/null: %v", err)
	}
	defer tty.Close()
	if !isTerminalReader(tty) {
		t.Fatalf("expected terminal reader")
	}
	if !isTerminalWriter(tty) {
		t.Fatalf("expected terminal writer")
	}
}
