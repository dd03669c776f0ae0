package command

import (
	"bytes"
	"strings"
	"testing"
)

// runApp runs the CLI with args and returns what it wrote to stdout and
// stderr.
func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	app := App()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"tokstore-cli"}, args...))
	return stdout.String(), stderr.String(), err
}

// fileBackendArgs selects a file backend in a fresh directory with a cheap
// hasher.
func fileBackendArgs(t *testing.T) []string {
	t.Helper()
	return []string{
		"--set", "session.adapter=file",
		"--set", "file.dir=" + t.TempDir(),
		"--set", "hasher.algorithm=pbkdf2",
		"--set", "hasher.iterations=1000",
	}
}

func withArgs(base []string, args ...string) []string {
	out := append([]string(nil), base...)
	return append(out, args...)
}
