package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/environmint/envmint/internal/platform"
)

// Default content for probe.env.
const defaultProbeEnvContent = `# Extra environment variables passed to every validation script.
# Lines are KEY=value; quotes and export prefixes are accepted.
# PATH_EXTRA=/opt/homebrew/bin
`

// InitGlobal creates the envmint home directory layout with proper permissions.
// It prints progress messages to w. Existing items are skipped with a message.
// The catalog and settings files are seeded by their own stores on first load.
func InitGlobal(w io.Writer) error {
	root, err := GetRoot()
	if err != nil {
		return err
	}

	if err := ensureDir(w, root, DirPermNormal); err != nil {
		return err
	}

	scriptsDir := filepath.Join(root, ScriptsDir)
	if err := ensureDir(w, scriptsDir, DirPermNormal); err != nil {
		return err
	}

	// probe.env may carry tokens, keep it private.
	probeEnv := filepath.Join(root, ProbeEnvFile)
	if err := ensureFile(w, probeEnv, defaultProbeEnvContent, FilePermSecure); err != nil {
		return err
	}

	return nil
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}

// ensureFile creates a file with content if it doesn't exist.
func ensureFile(w io.Writer, path, content string, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
		return nil
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
