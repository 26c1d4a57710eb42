package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"repograph/internal/core/config"
	domainerrors "repograph/internal/core/errors"
	"repograph/internal/engine/graph"
	"repograph/internal/shared/util"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

const sourceName = "local"

// languageByExt approximates the upstream language breakdown for a checkout.
var languageByExt = map[string]string{
	"ts":    "TypeScript",
	"tsx":   "TypeScript",
	"js":    "JavaScript",
	"jsx":   "JavaScript",
	"mjs":   "JavaScript",
	"cjs":   "JavaScript",
	"py":    "Python",
	"go":    "Go",
	"rs":    "Rust",
	"css":   "CSS",
	"scss":  "SCSS",
	"html":  "HTML",
	"vue":   "Vue",
	"java":  "Java",
	"kt":    "Kotlin",
	"rb":    "Ruby",
	"php":   "PHP",
	"c":     "C",
	"h":     "C",
	"cpp":   "C++",
	"cs":    "C#",
	"swift": "Swift",
	"sh":    "Shell",
}

// Source serves a directory on disk through the fetcher interface. Owner
// and repo arguments are ignored; every call reads from the root.
type Source struct {
	root      string
	excludes  []glob.Glob
	gitignore *ignore.GitIgnore
}

func New(root string, cfg config.Local) (*Source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeNotFound, "local root not found"),
			domainerrors.CtxPath, root)
	}
	if !info.IsDir() {
		return nil, domainerrors.AddContext(
			domainerrors.New(domainerrors.CodeValidationError, "local root is not a directory"),
			domainerrors.CtxPath, root)
	}

	src := &Source{root: abs}
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		src.excludes = append(src.excludes, g)
	}

	if cfg.GitignoreEnabled() {
		gitignorePath := filepath.Join(abs, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			gi, err := ignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", gitignorePath, err)
			}
			src.gitignore = gi
		}
	}
	return src, nil
}

func (s *Source) Name() string {
	return sourceName
}

func (s *Source) Root() string {
	return s.root
}

// ListFiles walks the root in lexical order. Excluded directories are not
// descended into.
func (s *Source) ListFiles(ctx context.Context, owner, repo string) ([]graph.FileEntry, error) {
	entries := make([]graph.FileEntry, 0)
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == s.root {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = util.NormalizePatternPath(filepath.ToSlash(rel))

		if d.IsDir() {
			if s.Excluded(rel + "/") {
				return filepath.SkipDir
			}
			entries = append(entries, graph.FileEntry{Path: rel, Kind: graph.KindDirectory})
			return nil
		}
		if !d.Type().IsRegular() || s.Excluded(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, graph.FileEntry{Path: rel, Kind: graph.KindFile, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeUpstream, "walk local root"),
			domainerrors.CtxPath, s.root)
	}
	return entries, nil
}

// Excluded reports whether a slash-separated relative path is dropped by an
// exclude glob or the root .gitignore. Directory paths end in "/".
func (s *Source) Excluded(rel string) bool {
	for _, g := range s.excludes {
		if g.Match(rel) {
			return true
		}
	}
	if s.gitignore != nil && s.gitignore.MatchesPath(rel) {
		return true
	}
	return false
}

func (s *Source) GetContent(ctx context.Context, owner, repo, rel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", domainerrors.AddContext(
			domainerrors.New(domainerrors.CodeValidationError, "path escapes local root"),
			domainerrors.CtxPath, rel)
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		code := domainerrors.CodeInternal
		if errors.Is(err, fs.ErrNotExist) {
			code = domainerrors.CodeNotFound
		}
		return "", domainerrors.AddContext(
			domainerrors.Wrap(err, code, "read local file"),
			domainerrors.CtxPath, rel)
	}
	return string(data), nil
}

// ListLanguages sums file sizes per language using a fixed extension table.
func (s *Source) ListLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	entries, err := s.ListFiles(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	languages := make(map[string]int64)
	for _, entry := range entries {
		if entry.Kind != graph.KindFile {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(entry.Path), "."))
		if lang, ok := languageByExt[ext]; ok {
			languages[lang] += entry.Size
		}
	}
	return languages, nil
}
