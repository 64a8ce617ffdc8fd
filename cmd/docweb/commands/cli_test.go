package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweb/internal/config"
	"git.home.luguber.info/inful/docweb/internal/plan"
)

// project writes a minimal project below a fresh root and returns the root
// and the project file path.
func project(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	for path, content := range map[string]string{
		"doc/manual.rst": "Manual\n",
		"lib/system.nim": "",
		"web/nim.ini":    "[project]\nname = Nim\n[documentation]\ndoc = manual\nsrcdoc = system\n",
	} {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
	return root, filepath.Join(root, "web", "nim.ini")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	g := &Global{Ctx: context.Background(), Stdout: &out}
	parser, err := kong.New(&cli, kong.Name("docweb"), kong.Vars{"version": "test"}, kong.Bind(g),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = kctx.Run(g, &cli)
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	root, ini := project(t)
	out, err := run(t, "--root", root, "--output", "/srv/www", "--compiler-arg=--hints:off", "plan", ini)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "# docs (3 commands)", lines[0])
	assert.Equal(t, "nim rst2html --hints:off -o:/srv/www/docs/manual.html --index:on "+filepath.Join(root, "doc", "manual.rst"), lines[1])
	assert.Contains(t, lines[2], "nim doc --hints:off -o:/srv/www/docs/system.html")
	assert.Equal(t, "nim buildIndex -o:/srv/www/docs/theindex.html /srv/www/docs", lines[3])
}

func TestPlanCommand_RejectsUnknownMode(t *testing.T) {
	root, ini := project(t)
	_, err := run(t, "--root", root, "plan", "--mode", "html", ini)
	require.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	root, ini := project(t)
	out, err := run(t, "--root", root, "--var", "who=cli", "--parallel-build", "1", "config", ini)
	require.NoError(t, err)

	assert.Contains(t, out, "project_name: Nim")
	assert.Contains(t, out, "workers: 1")
	assert.Contains(t, out, "who: cli")
}

func TestConfigCommand_CamelCaseFlagAliases(t *testing.T) {
	root, ini := project(t)
	out, err := run(t, "--root", root, "--var=who=alias", "--parallelBuild=3", "--googleAnalytics=UA-9", "config", ini)
	require.NoError(t, err)

	assert.Contains(t, out, "workers: 3")
	assert.Contains(t, out, "analytics_id: UA-9")
	assert.Contains(t, out, "who: alias")
}

func TestMissingInputFile(t *testing.T) {
	_, err := run(t, "config", filepath.Join(t.TempDir(), "absent.ini"))
	require.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	assert.Equal(t, slog.LevelInfo, LogLevel(false))
	assert.Equal(t, slog.LevelDebug, LogLevel(true))

	t.Setenv(EnvLogLevel, "WARN")
	assert.Equal(t, slog.LevelWarn, LogLevel(true))
}

func TestPlanDestination(t *testing.T) {
	cfg := &config.ProjectConfig{OutputDir: "/out"}
	assert.Equal(t, "/out/docs", PlanDestination(cfg, plan.ModeDocs))
	assert.Equal(t, "/out/docs", PlanDestination(cfg, plan.ModePDF))
	assert.Equal(t, "/out/json", PlanDestination(cfg, plan.ModeJSON))
	assert.Equal(t, "/out", PlanDestination(cfg, plan.ModeWebDocs))
}
