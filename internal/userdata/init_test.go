package userdata

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestInitGlobal_CreatesStructure(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "home")
	t.Setenv("ENVMINT_HOME", tmp)

	var buf bytes.Buffer
	if err := InitGlobal(&buf); err != nil {
		t.Fatalf("InitGlobal failed: %v", err)
	}

	assertDirExists(t, tmp)
	assertDirExists(t, filepath.Join(tmp, "scripts"))
	assertFileExists(t, filepath.Join(tmp, "probe.env"))

	if runtime.GOOS != "windows" {
		assertPerm(t, filepath.Join(tmp, "probe.env"), FilePermSecure)
		assertPerm(t, filepath.Join(tmp, "scripts"), DirPermNormal)
	}

	if !strings.Contains(buf.String(), "[ OK ]") {
		t.Error("expected [ OK ] in output")
	}
}

func TestInitGlobal_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("ENVMINT_HOME", tmp)

	var buf1 bytes.Buffer
	if err := InitGlobal(&buf1); err != nil {
		t.Fatalf("first InitGlobal failed: %v", err)
	}

	probeEnv := filepath.Join(tmp, "probe.env")
	if err := os.WriteFile(probeEnv, []byte("CUSTOM=1\n"), FilePermSecure); err != nil {
		t.Fatal(err)
	}

	var buf2 bytes.Buffer
	if err := InitGlobal(&buf2); err != nil {
		t.Fatalf("second InitGlobal failed: %v", err)
	}
	if !strings.Contains(buf2.String(), "[SKIP]") {
		t.Error("expected [SKIP] messages in second run")
	}

	data, err := os.ReadFile(probeEnv)
	if err != nil {
		t.Fatalf("reading probe.env: %v", err)
	}
	if string(data) != "CUSTOM=1\n" {
		t.Errorf("probe.env was overwritten: %q", data)
	}
}

func TestCheckUserdata_MissingRoot(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "absent")
	t.Setenv("ENVMINT_HOME", tmp)

	var buf bytes.Buffer
	if err := CheckUserdata(&buf, false); err != nil {
		t.Fatalf("CheckUserdata failed: %v", err)
	}
	if !strings.Contains(buf.String(), "[MISS]") {
		t.Errorf("expected [MISS] in output, got:\n%s", buf.String())
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("check without fix must not create the root")
	}
}

func TestCheckUserdata_FixCreatesRoot(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "absent")
	t.Setenv("ENVMINT_HOME", tmp)

	var buf bytes.Buffer
	if err := CheckUserdata(&buf, true); err != nil {
		t.Fatalf("CheckUserdata failed: %v", err)
	}
	assertDirExists(t, filepath.Join(tmp, "scripts"))
}

func TestCheckUserdata_FixesProbeEnvPerms(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	tmp := t.TempDir()
	t.Setenv("ENVMINT_HOME", tmp)

	var setup bytes.Buffer
	if err := InitGlobal(&setup); err != nil {
		t.Fatal(err)
	}
	probeEnv := filepath.Join(tmp, "probe.env")
	if err := os.Chmod(probeEnv, 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := CheckUserdata(&buf, true); err != nil {
		t.Fatalf("CheckUserdata failed: %v", err)
	}
	if !strings.Contains(buf.String(), "[FIX ]") {
		t.Errorf("expected [FIX ] in output, got:\n%s", buf.String())
	}
	assertPerm(t, probeEnv, FilePermSecure)
}

// Helpers

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("directory %s does not exist: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", path)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file %s does not exist: %v", path, err)
	}
	if info.IsDir() {
		t.Fatalf("%s is a directory, expected file", path)
	}
}

func assertPerm(t *testing.T, path string, expected os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if perm := info.Mode().Perm(); perm != expected {
		t.Errorf("%s permissions = %o, want %o", path, perm, expected)
	}
}
