package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repograph/internal/engine/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func projectTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"src/a.ts":      `import { b } from "./b";`,
		"src/b.ts":      `import { c } from "./c";`,
		"src/c.ts":      `import { a } from "./a";`,
		"src/main.ts":   `import { a } from "./a";`,
		"src/a.test.ts": `import { a } from "./a";`,
	})
}

func localOptions(t *testing.T, root string) options {
	return options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Local:      root,
	}
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name    string
		opts    options
		wantErr string
	}{
		{name: "Remote", opts: options{Args: []string{"acme/web"}}},
		{name: "Local", opts: options{Local: "."}},
		{name: "ServeWithoutRepo", opts: options{Serve: true}},
		{name: "RemoteTrace", opts: options{Trace: true, Args: []string{"acme/web", "a.ts", "b.ts"}}},
		{name: "LocalTrace", opts: options{Local: ".", Trace: true, Args: []string{"a.ts", "b.ts"}}},
		{name: "MissingRepo", opts: options{}, wantErr: "missing repository"},
		{name: "TraceNeedsTwo", opts: options{Local: ".", Trace: true, Args: []string{"a.ts"}}, wantErr: "two file arguments"},
		{name: "ExtraArgs", opts: options{Args: []string{"acme/web", "extra"}}, wantErr: "unexpected arguments"},
		{name: "ExclusiveModes", opts: options{Local: ".", Serve: true, Watch: true}, wantErr: "mutually exclusive"},
		{name: "WatchNeedsLocal", opts: options{Watch: true, Args: []string{"acme/web"}}, wantErr: "requires -local"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_LocalSummary(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), localOptions(t, projectTree(t)), &out))

	text := out.String()
	assert.Contains(t, text, "Circular dependencies: 1")
	assert.Contains(t, text, "Tests: yes")
	assert.Contains(t, text, "src/a.ts -> src/b.ts -> src/c.ts -> src/a.ts")
}

func TestRun_WritesRenderedOutput(t *testing.T) {
	opts := localOptions(t, projectTree(t))
	opts.Format = "tsv"
	opts.Out = filepath.Join(t.TempDir(), "out", "graph.tsv")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(opts.Out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Source\tTarget\tInCycle\n"))
	assert.Contains(t, string(data), "src/a.ts\tsrc/b.ts\ttrue")
}

func TestRun_TraceAndImpact(t *testing.T) {
	root := projectTree(t)

	opts := localOptions(t, root)
	opts.Trace = true
	opts.Args = []string{"src/main.ts", "src/c.ts"}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Equal(t, "src/main.ts -> src/a.ts -> src/b.ts -> src/c.ts\n", out.String())

	opts = localOptions(t, root)
	opts.Impact = "src/c.ts"
	out.Reset()
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "Direct importers (1)\n- src/b.ts\n")

	opts.Impact = "src/missing.ts"
	err := run(context.Background(), opts, &out)
	assert.ErrorIs(t, err, graph.ErrImpactTargetNotFound)
}

func TestRun_InjectDiagram(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Project\n<!-- repograph:dependencies:start -->\nold\n<!-- repograph:dependencies:end -->\n"), 0o644))

	opts := localOptions(t, projectTree(t))
	opts.Inject = doc
	require.NoError(t, run(context.Background(), opts, &bytes.Buffer{}))

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "```mermaid\n")
	assert.Contains(t, string(data), "flowchart LR")
	assert.NotContains(t, string(data), "old")
}

func TestRun_HistoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "repograph.toml")
	dbPath := filepath.Join(dir, "history.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[history]\nenabled = true\npath = \""+filepath.ToSlash(dbPath)+"\"\n"), 0o644))

	root := projectTree(t)
	opts := options{ConfigPath: cfgPath, Local: root}
	require.NoError(t, run(context.Background(), opts, &bytes.Buffer{}))

	opts.History = true
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Timestamp\tRunID"))
}

func TestRun_HistoryDisabled(t *testing.T) {
	opts := localOptions(t, projectTree(t))
	opts.History = true
	err := run(context.Background(), opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestFormatImpactReport(t *testing.T) {
	text := formatImpactReport(graph.ImpactReport{
		TargetPath:          "src/c.ts",
		DirectImporters:     []string{"src/b.ts"},
		TransitiveImporters: []string{"src/a.ts"},
		DirectImports:       []string{},
	})
	assert.Contains(t, text, "Target file: src/c.ts")
	assert.Contains(t, text, "Transitive impact (1)\n- src/a.ts\n")
	assert.Contains(t, text, "Imports (0)")
}
