package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/environmint/envmint/internal/branding"
	"github.com/environmint/envmint/internal/platform"
)

// CheckUserdata validates the envmint home layout and permissions.
// When fix is true, it attempts to repair issues.
func CheckUserdata(w io.Writer, fix bool) error {
	root, err := GetRoot()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Userdata check:")

	if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", root)
		if fix {
			fmt.Fprintln(w, "  [FIX ] Running init...")
			if initErr := InitGlobal(w); initErr != nil {
				return fmt.Errorf("auto-fix init: %w", initErr)
			}
		} else {
			fmt.Fprintf(w, "         Run '%s init' to create\n", branding.CLIName())
		}
		return nil
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", root)

	checkDirExists(w, filepath.Join(root, ScriptsDir), fix)
	checkFileExists(w, filepath.Join(root, CatalogFile))
	checkFileExists(w, filepath.Join(root, SettingsFile))
	checkFilePerm(w, filepath.Join(root, ProbeEnvFile), FilePermSecure, fix)

	return nil
}

func checkFileExists(w io.Writer, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist (created on first use)\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

func checkDirExists(w io.Writer, path string, fix bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, DirPermNormal); mkErr != nil {
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return
			}
			fmt.Fprintf(w, "  [FIX ] Created %s\n", path)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [WARN] %s exists but is not a directory\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

func checkFilePerm(w io.Writer, path string, expected os.FileMode, fix bool) {
	perm, ok, err := platform.CheckPerm(path, expected)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}

	if ok {
		fmt.Fprintf(w, "  [ OK ] %s (permissions %o)\n", path, perm)
		return
	}
	fmt.Fprintf(w, "  [WARN] %s has permissions %o (expected %o)\n", path, perm, expected)
	if fix {
		if chErr := platform.Chmod(path, expected); chErr != nil {
			fmt.Fprintf(w, "  [FAIL] Could not fix permissions on %s: %v\n", path, chErr)
			return
		}
		fmt.Fprintf(w, "  [FIX ] Fixed permissions on %s to %o\n", path, expected)
	}
}
