package resolver

import (
	"strings"
)

// Options configure specifier resolution. AliasPrefix is replaced by
// AliasTarget and the remainder is read from the repository root.
type Options struct {
	AliasPrefix     string
	AliasTarget     string
	ProbeExtensions []string
	IndexExtensions []string
}

func DefaultOptions() Options {
	return Options{
		AliasPrefix:     "@/",
		AliasTarget:     "src/",
		ProbeExtensions: []string{".ts", ".tsx", ".js", ".jsx", ".css", ".py"},
		IndexExtensions: []string{".ts", ".tsx", ".js", ".jsx"},
	}
}

// PathSet is the set of every file path in the listing.
type PathSet map[string]struct{}

func NewPathSet(paths []string) PathSet {
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func (s PathSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

type Resolver struct {
	opts  Options
	known PathSet
}

func New(opts Options, known PathSet) *Resolver {
	return &Resolver{opts: opts, known: known}
}

// Resolve maps spec, written in a file under fromDir, to a known path.
func (r *Resolver) Resolve(spec, fromDir string) (string, bool) {
	return Resolve(spec, fromDir, r.known, r.opts)
}

// ResolveAll resolves every specifier and drops misses. Order is preserved
// and repeats are kept.
func (r *Resolver) ResolveAll(specs []string, fromDir string) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		if target, ok := r.Resolve(spec, fromDir); ok {
			out = append(out, target)
		}
	}
	return out
}

// Resolve tries, in order: exact match, each probe extension, an index file
// for each index extension, and a Python package __init__.py. An empty
// candidate is the repository root, where only the index and __init__.py
// probes apply.
func Resolve(spec, fromDir string, known PathSet, opts Options) (string, bool) {
	candidate := Candidate(spec, fromDir, opts)

	if candidate != "" {
		if known.Has(candidate) {
			return candidate, true
		}
		for _, ext := range opts.ProbeExtensions {
			if p := candidate + ext; known.Has(p) {
				return p, true
			}
		}
	}
	for _, ext := range opts.IndexExtensions {
		if p := within(candidate, "index"+ext); known.Has(p) {
			return p, true
		}
	}
	if p := within(candidate, "__init__.py"); known.Has(p) {
		return p, true
	}
	return "", false
}

func within(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Candidate applies alias substitution or relative path algebra and returns
// the unprobed repository path. Leading ".." segments past the root are dropped.
func Candidate(spec, fromDir string, opts Options) string {
	base := fromDir
	rest := spec
	if opts.AliasPrefix != "" && strings.HasPrefix(spec, opts.AliasPrefix) {
		base = ""
		rest = opts.AliasTarget + strings.TrimPrefix(spec, opts.AliasPrefix)
	}

	stack := splitSegments(base)
	for _, seg := range strings.Split(rest, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}
	return strings.Join(stack, "/")
}

func splitSegments(dir string) []string {
	parts := strings.Split(dir, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
