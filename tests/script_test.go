// End-to-end CLI tests. Each testdata/*.txt file is a script in the
// cmd/go test-script language, run against a freshly built culprit binary
// in its own temporary directory.
package tests

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repo root from %s", wd)
		}
		dir = parent
	}
}

func buildCulprit(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "culprit")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/culprit")
	cmd.Dir = repoRoot(t)
	cmd.Env = os.Environ()
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build culprit: %v\n%s", err, out)
	}
	return bin
}

// scriptEnv is the hermetic environment scripts run with: git identity
// pinned, config isolated under the work dir, no color, no pager.
func scriptEnv(work string) []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + work,
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test",
		"GIT_COMMITTER_EMAIL=test@example.com",
		"NO_COLOR=1",
		"CULPRIT_NO_PAGER=1",
	}
}

func TestScripts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("scripts assume a POSIX shell")
	}
	if testing.Short() {
		t.Skip("builds the culprit binary")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}

	bin := buildCulprit(t)
	engine := script.NewEngine()
	engine.Cmds["culprit"] = script.Program(bin, nil, 100*time.Millisecond)

	files, err := filepath.Glob(filepath.Join("testdata", "*.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scripts under testdata")
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txt")
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			work := t.TempDir()
			state, err := script.NewState(context.Background(), work, scriptEnv(work))
			if err != nil {
				t.Fatal(err)
			}
			scripttest.Run(t, engine, state, filepath.Base(file), bytes.NewReader(data))
		})
	}
}
