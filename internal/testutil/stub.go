package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// StubTool writes an executable sh script named name into dir and returns its path.
// The body runs with "$@" holding the arguments the tool was called with.
func StubTool(t testing.TB, dir, name, body string) string {
	t.Helper()
	RequireTool(t, "sh")

	path := filepath.Join(dir, name)
	script := fmt.Sprintf("#!/bin/sh\n%s\n", body)
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// ExitStub returns a stub that writes partial to stdout and exits with code.
func ExitStub(t testing.TB, dir, name, partial string, code int) string {
	t.Helper()
	return StubTool(t, dir, name, fmt.Sprintf("printf '%%s' '%s'\nexit %d", partial, code))
}
