package app

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"repograph/internal/core/config"
	domainerrors "repograph/internal/core/errors"
	"repograph/internal/core/ports"
	"repograph/internal/engine/extract"
	"repograph/internal/engine/graph"
	"repograph/internal/engine/resolver"
	"repograph/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Analysis is the full result of one run: the frozen graph in wire form
// plus the counters the report is derived from.
type Analysis struct {
	Nodes      []graph.Node     `json:"nodes"`
	Edges      []graph.Edge     `json:"edges"`
	Languages  map[string]int64 `json:"languages"`
	TotalFiles int              `json:"totalFiles"`
	TotalSize  int64            `json:"totalSize"`
	Cycles     []graph.Cycle    `json:"cycles"`

	AnalyzedFiles int          `json:"analyzedFiles"`
	SkippedFiles  int          `json:"skippedFiles"`
	Graph         *graph.Graph `json:"-"`
}

type Option func(*Analyzer)

// WithHistory stores a snapshot of every report produced by Report.
func WithHistory(store ports.HistoryStore) Option {
	return func(a *Analyzer) {
		a.history = store
	}
}

// WithRegistry replaces the default matcher registry.
func WithRegistry(registry *extract.Registry) Option {
	return func(a *Analyzer) {
		if registry != nil {
			a.registry = registry
		}
	}
}

type Analyzer struct {
	source   ports.SourceFetcher
	cfg      *config.Config
	registry *extract.Registry
	opts     resolver.Options
	history  ports.HistoryStore
	name     string
}

func NewAnalyzer(source ports.SourceFetcher, cfg *config.Config, options ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &Analyzer{
		source:   source,
		cfg:      cfg,
		registry: extract.DefaultRegistry(cfg.Resolver.AliasPrefix),
		opts: resolver.Options{
			AliasPrefix:     cfg.Resolver.AliasPrefix,
			AliasTarget:     cfg.Resolver.AliasTarget,
			ProbeExtensions: cfg.Resolver.ProbeExtensions,
			IndexExtensions: cfg.Resolver.IndexExtensions,
		},
		name: "custom",
	}
	if named, ok := source.(ports.NamedSource); ok {
		a.name = named.Name()
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// Analyze lists the repository, fetches the selected code files in
// sequential batches and returns the resulting graph with its cycles.
// Listing failures abort the run; content failures only drop that file's
// imports.
func (a *Analyzer) Analyze(ctx context.Context, owner, repo string) (*Analysis, error) {
	start := time.Now()
	ctx, span := observability.Tracer.Start(ctx, "analyze",
		trace.WithAttributes(attribute.String("repo", owner+"/"+repo)))
	defer span.End()

	result, err := a.analyze(ctx, owner, repo)
	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.AnalysesTotal.WithLabelValues(a.name, outcome).Inc()
	observability.AnalysisDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	return result, err
}

func (a *Analyzer) analyze(ctx context.Context, owner, repo string) (*Analysis, error) {
	entries, languages, err := a.listing(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(entries)
	paths := builder.Paths()
	res := resolver.New(a.opts, resolver.NewPathSet(paths))
	selected := selectCodeFiles(paths, a.cfg.Analysis.CodeExtensions, a.cfg.Analysis.MaxFiles)

	slog.Debug("analysis started",
		"repo", owner+"/"+repo,
		"files", len(paths),
		"selected", len(selected))

	batchStart := time.Now()
	analyzed, skipped := 0, 0
	batchSize := a.cfg.Analysis.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	for i := 0; i < len(selected); i += batchSize {
		end := min(i+batchSize, len(selected))
		batch := selected[i:end]

		contents, err := a.fetchBatch(ctx, owner, repo, batch)
		if err != nil {
			return nil, err
		}
		for j, filePath := range batch {
			content := contents[j]
			if content == "" {
				skipped++
				continue
			}
			analyzed++
			specs := a.registry.Extract(content, filePath)
			if len(specs) == 0 {
				continue
			}
			builder.AddImports(filePath, res.ResolveAll(specs, directoryOf(filePath)))
		}
	}
	observability.AnalysisDuration.WithLabelValues("fetch").Observe(time.Since(batchStart).Seconds())

	detectStart := time.Now()
	g := builder.Build()
	cycles := g.DetectCycles(a.cfg.Analysis.MaxCycles)
	observability.AnalysisDuration.WithLabelValues("detect").Observe(time.Since(detectStart).Seconds())
	observability.CyclesFound.Observe(float64(len(cycles)))

	if cycles == nil {
		cycles = []graph.Cycle{}
	}
	return &Analysis{
		Nodes:         g.Nodes(),
		Edges:         g.Edges(),
		Languages:     languages,
		TotalFiles:    g.NodeCount(),
		TotalSize:     g.TotalSize(),
		Cycles:        cycles,
		AnalyzedFiles: analyzed,
		SkippedFiles:  skipped,
		Graph:         g,
	}, nil
}

// listing runs the file listing and the language breakdown side by side.
// A failed language lookup degrades to an empty map.
func (a *Analyzer) listing(ctx context.Context, owner, repo string) ([]graph.FileEntry, map[string]int64, error) {
	var entries []graph.FileEntry
	languages := map[string]int64{}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		listed, err := a.source.ListFiles(egCtx, owner, repo)
		if err != nil {
			return listingError(err, owner, repo)
		}
		entries = listed
		return nil
	})
	eg.Go(func() error {
		langs, err := a.source.ListLanguages(egCtx, owner, repo)
		if err != nil {
			slog.Debug("language breakdown unavailable", "repo", owner+"/"+repo, "error", err)
			return nil
		}
		if langs != nil {
			languages = langs
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return entries, languages, nil
}

// fetchBatch fetches one batch concurrently. Each goroutine owns its slot,
// so the result keeps batch order. Only cancellation of ctx is an error.
func (a *Analyzer) fetchBatch(ctx context.Context, owner, repo string, batch []string) ([]string, error) {
	ctx, span := observability.Tracer.Start(ctx, "fetch_batch",
		trace.WithAttributes(attribute.Int("files", len(batch))))
	defer span.End()

	contents := make([]string, len(batch))
	var eg errgroup.Group
	for i, filePath := range batch {
		i, filePath := i, filePath
		eg.Go(func() error {
			content, err := a.source.GetContent(ctx, owner, repo, filePath)
			switch {
			case err != nil:
				observability.ContentFetchesTotal.WithLabelValues("error").Inc()
				slog.Debug("content fetch failed", "repo", owner+"/"+repo, "path", filePath, "error", err)
			case content == "":
				observability.ContentFetchesTotal.WithLabelValues("empty").Inc()
			default:
				observability.ContentFetchesTotal.WithLabelValues("ok").Inc()
				contents[i] = content
			}
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis of %s/%s cancelled: %w", owner, repo, err)
	}
	return contents, nil
}

// selectCodeFiles keeps paths with a code extension, in listing order, up
// to limit.
func selectCodeFiles(paths []string, extensions []string, limit int) []string {
	codeSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		codeSet[ext] = true
	}
	out := make([]string, 0)
	for _, p := range paths {
		if limit > 0 && len(out) >= limit {
			break
		}
		if codeSet[extensionOf(p)] {
			out = append(out, p)
		}
	}
	return out
}

func extensionOf(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// directoryOf matches Node.Directory: empty for files at the root.
func directoryOf(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[:idx]
	}
	return ""
}

func listingError(err error, owner, repo string) error {
	if domainerrors.CodeOf(err) == domainerrors.CodeInternal {
		err = domainerrors.Wrap(err, domainerrors.CodeUpstream, "list repository files")
	}
	return domainerrors.AddContext(err, domainerrors.CtxRepo, owner+"/"+repo)
}
