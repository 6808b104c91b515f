package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.cl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const inferable = `
class Main {
  x : AUTO_TYPE <- 5;
  main() : Object { x };
};
`

const broken = `
class Main {
  x : Int <- "five";
  main() : Object { x };
};
`

func TestCheckPrintsInferenceSummary(t *testing.T) {
	code, out, _ := run("check", "--color=never", writeSource(t, inferable))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "no errors")
	assert.Contains(t, out, "attribute")
	assert.Contains(t, out, "Int")
}

func TestCheckFailsOnDiagnostics(t *testing.T) {
	code, out, _ := run("check", "--color=never", writeSource(t, broken))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "[L001]")
	assert.Contains(t, out, "1 error")
}

func TestCheckYAMLReport(t *testing.T) {
	code, out, _ := run("check", "--format=yaml", writeSource(t, broken))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "code: L001")
}

func TestDumpSubstitutesInferredTypes(t *testing.T) {
	path := writeSource(t, inferable)

	code, out, _ := run("dump", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "x : Int <- 5;")

	code, out, _ = run("dump", "--keep-auto", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "x : AUTO_TYPE <- 5;")
}

func TestDumpRefusesBrokenPrograms(t *testing.T) {
	code, out, errOut := run("dump", "--color=never", writeSource(t, broken))
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "[L001]")
}

func TestSettingsFileIsApplied(t *testing.T) {
	path := writeSource(t, "class A { };")
	code, _, _ := run("check", "--color=never", path)
	assert.Equal(t, 1, code, "Main is required by default")

	settings := filepath.Join(filepath.Dir(path), "autotype.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("require_main: false\n"), 0o644))
	code, out, _ := run("check", "--color=never", path)
	assert.Equal(t, 0, code, out)
}

func TestSettingsFileChoosesFormat(t *testing.T) {
	path := writeSource(t, broken)
	settings := filepath.Join(filepath.Dir(path), "autotype.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("format: yaml\n"), 0o644))

	code, out, _ := run("check", "--color=never", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "code: L001")

	code, out, _ = run("check", "--color=never", "--format=text", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "[L001]")
	assert.NotContains(t, out, "code: L001")
}

func TestVersion(t *testing.T) {
	code, out, _ := run("version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "autotype 0.4.0\n", out)
}
