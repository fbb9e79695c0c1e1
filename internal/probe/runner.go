package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Result captures one external process run. Err is set only when the
// process could not be started or was interrupted; a non-zero exit status
// is reported through ExitCode alone.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Runner starts external processes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs processes with os/exec. The child inherits the current
// environment plus the entries of EnvFile and Env, in that order.
type ExecRunner struct {
	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string
	Env     map[string]string
}

// Run executes name with args and captures both output streams.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	bin, err := exec.LookPath(name)
	if err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("locating %s: %w", name, err)}
	}

	env, err := r.environ()
	if err != nil {
		return Result{ExitCode: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = env

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	res := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		res.Err = ctxErr
		return res
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res
		}
		res.ExitCode = -1
		res.Err = fmt.Errorf("running %s: %w", name, err)
	}
	return res
}

// environ builds the child environment.
func (r *ExecRunner) environ() ([]string, error) {
	env := os.Environ()

	if r.EnvFile != "" {
		vars, err := godotenv.Read(r.EnvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("loading probe environment %s: %w", r.EnvFile, err)
		default:
			env = mergeEnv(env, vars)
		}
	}
	return mergeEnv(env, r.Env), nil
}

// mergeEnv sets each entry of vars in env, replacing existing keys.
// Keys are applied in sorted order so the result is stable.
func mergeEnv(env []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, vars[k])
	}
	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
