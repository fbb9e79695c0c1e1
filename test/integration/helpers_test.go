//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // ENVMINT_HOME: settings, catalog, probe.env, scripts/
	ProjectDir string // A mock project directory
}

// setupTestEnv creates isolated temp directories and points ENVMINT_HOME at
// one of them so nothing touches the real home directory.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
	}
	t.Setenv("ENVMINT_HOME", env.HomeDir)
	return env
}

// setupProject writes a small polyglot project: a React front end, a Go
// service and a Dockerfile.
func setupProject(t *testing.T, dir string) {
	t.Helper()

	writeFile(t, filepath.Join(dir, "package.json"), `{
  "name": "storefront",
  "dependencies": {"react": "^18.2.0", "react-dom": "^18.2.0"},
  "engines": {"node": ">=20"}
}
`)
	writeFile(t, filepath.Join(dir, "src", "App.jsx"), "export default function App() { return null }\n")
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/storefront\n\ngo 1.22\n\nrequire github.com/gin-gonic/gin v1.9.1\n")
	writeFile(t, filepath.Join(dir, "cmd", "api", "main.go"), "package main\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(dir, "Dockerfile"), "FROM golang:1.22\n")
	writeFile(t, filepath.Join(dir, "node_modules", "left-pad", "package.json"), `{"dependencies":{"vue":"3"}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "left-pad", "Pad.vue"), "<template><span/></template>\n")
}

// requireSh skips the test when no POSIX shell is available.
func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertContains fails if s does not contain substr.
func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("output does not contain %q.\nOutput:\n%s", substr, s)
	}
}
