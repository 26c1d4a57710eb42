package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"repograph/internal/core/app"
	"repograph/internal/core/config"
	"repograph/internal/core/ports"
	"repograph/internal/core/watcher"
	"repograph/internal/data/history"
	"repograph/internal/data/source/github"
	"repograph/internal/data/source/local"
	"repograph/internal/engine/graph"
	"repograph/internal/shared/observability"
	"repograph/internal/shared/util"
	"repograph/internal/ui/report"
	"repograph/internal/ui/server"
)

type options struct {
	ConfigPath string
	Local      string
	Format     string
	Out        string
	Inject     string
	Trace      bool
	Impact     string
	Serve      bool
	Watch      bool
	History    bool
	Since      time.Duration
	Args       []string
}

// target is what one invocation analyzes: a GitHub repository, or a local
// directory labelled local/<dirname>.
type target struct {
	owner string
	repo  string
	local *local.Source
}

func (t target) name() string {
	return t.owner + "/" + t.repo
}

func (o options) validate() error {
	modes := 0
	for _, on := range []bool{o.Trace, o.Impact != "", o.Serve, o.Watch, o.History} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("-trace, -impact, -serve, -watch and -history are mutually exclusive")
	}
	if o.Watch && o.Local == "" {
		return errors.New("-watch requires -local")
	}

	positional := len(o.Args)
	if o.Local == "" && !o.Serve {
		positional--
	}
	if o.Trace && positional != 2 {
		return errors.New("trace mode requires two file arguments: repograph -trace [owner/repo] <from> <to>")
	}
	if !o.Trace && positional > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(o.Args, " "))
	}
	if o.Local == "" && !o.Serve && len(o.Args) == 0 {
		return errors.New("missing repository, use owner/repo or -local <dir>")
	}
	return nil
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	tgt, source, err := resolveTarget(cfg, opts)
	if err != nil {
		return err
	}

	var analyzerOpts []app.Option
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		analyzerOpts = append(analyzerOpts, app.WithHistory(store))
	}
	analyzer := app.NewAnalyzer(source, cfg, analyzerOpts...)

	switch {
	case opts.Serve:
		return server.New(analyzer, cfg.Server, VERSION).ListenAndServe(ctx)
	case opts.History:
		return listHistory(ctx, analyzer, tgt, opts.Since, stdout)
	case opts.Watch:
		return watchLocal(ctx, analyzer, tgt, opts, stdout)
	}

	rep, analysis, err := analyzer.Report(ctx, tgt.owner, tgt.repo)
	if err != nil {
		return err
	}

	switch {
	case opts.Trace:
		from, to := opts.Args[len(opts.Args)-2], opts.Args[len(opts.Args)-1]
		chain, ok := analysis.Graph.FindImportChain(from, to)
		if !ok {
			return fmt.Errorf("no import chain from %s to %s", from, to)
		}
		_, err := fmt.Fprintln(stdout, formatChain(chain))
		return err
	case opts.Impact != "":
		impactReport, err := analysis.Graph.AnalyzeImpact(opts.Impact)
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, formatImpactReport(impactReport))
		return err
	}
	return emit(rep, analysis, opts, stdout)
}

func resolveTarget(cfg *config.Config, opts options) (target, ports.SourceFetcher, error) {
	if opts.Local != "" {
		src, err := local.New(opts.Local, cfg.Local)
		if err != nil {
			return target{}, nil, err
		}
		return target{owner: "local", repo: filepath.Base(src.Root()), local: src}, src, nil
	}

	client, err := github.New(cfg.GitHub)
	if err != nil {
		return target{}, nil, err
	}
	if opts.Serve {
		return target{}, client, nil
	}
	owner, repo, err := app.ParseRepo(opts.Args[0])
	if err != nil {
		return target{}, nil, err
	}
	return target{owner: owner, repo: repo}, client, nil
}

// emit writes the requested artifacts. Without -format the summary is printed.
func emit(rep app.Report, analysis *app.Analysis, opts options, stdout io.Writer) error {
	if opts.Inject != "" {
		if err := report.InjectMermaid(opts.Inject, rep, analysis, VERSION); err != nil {
			return err
		}
		slog.Info("injected diagram", "file", opts.Inject)
	}

	if opts.Format == "" && opts.Out == "" {
		return printSummary(stdout, rep)
	}

	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	body, err := report.Render(format, rep, analysis, VERSION)
	if err != nil {
		return err
	}
	if opts.Out == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := util.WriteFileWithDirs(opts.Out, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Out, err)
	}
	slog.Info("wrote output", "format", format, "file", opts.Out)
	return nil
}

func listHistory(ctx context.Context, analyzer *app.Analyzer, tgt target, window time.Duration, stdout io.Writer) error {
	if !analyzer.Config().History.Enabled {
		return errors.New("history is disabled, set [history] enabled = true")
	}
	var since time.Time
	if window > 0 {
		since = time.Now().UTC().Add(-window)
	}
	snapshots, err := analyzer.History(ctx, tgt.name(), since)
	if err != nil {
		return err
	}
	body, err := report.RenderHistoryTSV(snapshots)
	if err != nil {
		return err
	}
	_, err = stdout.Write(body)
	return err
}

func watchLocal(ctx context.Context, analyzer *app.Analyzer, tgt target, opts options, stdout io.Writer) error {
	analyzeOnce := func() {
		rep, analysis, err := analyzer.Report(ctx, tgt.owner, tgt.repo)
		if err != nil {
			slog.Error("analysis failed", "error", err)
			return
		}
		if err := emit(rep, analysis, opts, stdout); err != nil {
			slog.Error("failed to write output", "error", err)
		}
	}
	analyzeOnce()

	cfg := analyzer.Config()
	w, err := watcher.New(tgt.local.Root(), watcher.Options{
		Debounce:   cfg.Watch.Debounce,
		Extensions: cfg.Analysis.CodeExtensions,
		Excluded:   tgt.local.Excluded,
	}, func(paths []string) {
		slog.Info("change detected", "files", len(paths))
		analyzeOnce()
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printSummary(w io.Writer, rep app.Report) error {
	s := rep.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", rep.Repo)
	fmt.Fprintf(&b, "Health score: %d/100\n", s.HealthScore)
	fmt.Fprintf(&b, "Files: %d total, %d code, %d analyzed, %d skipped\n",
		s.TotalFiles, s.CodeFiles, rep.AnalyzedFiles, rep.SkippedFiles)
	fmt.Fprintf(&b, "Dependencies: %d (%d connected files, %.2f avg)\n", s.Dependencies, s.ConnectedFiles, s.AverageDeps)
	fmt.Fprintf(&b, "Circular dependencies: %d\n", s.CircularDeps)
	fmt.Fprintf(&b, "God files: %d\n", s.GodFiles)
	tests := "no"
	if s.HasTests {
		tests = "yes"
	}
	fmt.Fprintf(&b, "Tests: %s\n", tests)

	if len(rep.Hotspots) > 0 {
		b.WriteString("\nHotspots\n")
		for _, h := range rep.Hotspots {
			fmt.Fprintf(&b, "  %-48s %3d connections\n", h.Path, h.Connections)
		}
	}
	if len(rep.Cycles) > 0 {
		b.WriteString("\nCycles\n")
		for _, cycle := range rep.Cycles {
			fmt.Fprintf(&b, "  %s\n", formatChain(cycle))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatChain(chain []string) string {
	return strings.Join(chain, " -> ")
}

func formatImpactReport(r graph.ImpactReport) string {
	var b strings.Builder

	b.WriteString("Impact Analysis\n")
	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Target file: %s\n\n", r.TargetPath)

	fmt.Fprintf(&b, "Direct importers (%d)\n", len(r.DirectImporters))
	for _, p := range r.DirectImporters {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Transitive impact (%d)\n", len(r.TransitiveImporters))
	for _, p := range r.TransitiveImporters {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Imports (%d)\n", len(r.DirectImports))
	for _, p := range r.DirectImports {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return b.String()
}
