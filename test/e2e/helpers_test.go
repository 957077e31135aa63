//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// result is the outcome of one nuext run.
type result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// fixtureScripts are minimal stand-ins for the automation scripts.
var fixtureScripts = map[string]string{
	"scripts/core/security-validation.nu": `def main [file: string] {
    if (open --raw $file | str contains "rm -rf /") {
        error make {msg: "dangerous command"}
    }
}
`,
	"scripts/tools/size-dashboard.nu":                  "print \"cpu: 3%\"\n",
	"scripts/tools/generate-docs.nu":                   "exit 2\n",
	"scripts/tests/unit/comprehensive-config-tests.nu": "print ok\n",
	"scripts/core/setup.nu":                            "print done\n",
}

// newProject creates an automation project with the fixture scripts and
// isolated XDG directories. It returns the project root.
func newProject(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	writeFile(t, filepath.Join(home, "config", "nuext"), "config.yaml",
		"metrics:\n  textfile: "+filepath.Join(home, "state", "metrics.prom")+"\n")

	root := t.TempDir()
	for name, body := range fixtureScripts {
		writeFile(t, root, name, body)
	}
	return root
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// runNuext runs the binary with --project root and args.
func runNuext(t *testing.T, root string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(binaryPath, append([]string{"--project", root}, args...)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("run nuext: %v", err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}
