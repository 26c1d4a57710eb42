package resolver

import (
	"testing"
)

func TestCandidate(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		spec    string
		fromDir string
		want    string
	}{
		{"./b", "", "b"},
		{"./b", "src/lib", "src/lib/b"},
		{"../utils/x", "src/lib", "src/utils/x"},
		{"../../../../x", "src/lib", "x"},
		{"./a/./b//c", "pkg", "pkg/a/b/c"},
		{"@/lib/util", "deeply/nested/dir", "src/lib/util"},
		{"@/lib/../app", "x", "src/app"},
		{".", "app/api", "app/api"},
		{"..", "app/api", "app"},
		{"..", "", ""},
	}

	for _, tt := range tests {
		got := Candidate(tt.spec, tt.fromDir, opts)
		if got != tt.want {
			t.Errorf("Candidate(%q, %q) = %q, want %q", tt.spec, tt.fromDir, got, tt.want)
		}
	}
}

func TestResolve_ProbeOrder(t *testing.T) {
	known := NewPathSet([]string{
		"src/lib/util.ts",
		"src/lib/util.js",
		"src/components/index.tsx",
		"src/components.css",
		"app/models/__init__.py",
		"app/models/user.py",
		"styles/base.css",
		"README",
	})
	r := New(DefaultOptions(), known)

	tests := []struct {
		name    string
		spec    string
		fromDir string
		want    string
		ok      bool
	}{
		{"alias with extension probe", "@/lib/util", "anywhere/at/all", "src/lib/util.ts", true},
		{"extension beats index", "./components", "src", "src/components.css", true},
		{"exact match", "../styles/base.css", "src", "styles/base.css", true},
		{"exact match without extension", "./README", "", "README", true},
		{"python package init", "./models", "app", "app/models/__init__.py", true},
		{"python module", "./models/user", "app", "app/models/user.py", true},
		{"miss", "./nowhere", "src", "", false},
		{"miss alias", "@/lib/missing", "src", "", false},
		{"escape to root miss", "..", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.spec, tt.fromDir)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, %v)", tt.spec, tt.fromDir, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolve_IndexProbe(t *testing.T) {
	known := NewPathSet([]string{"src/hooks/index.js"})
	got, ok := Resolve("@/hooks", "src/app", known, DefaultOptions())
	if !ok || got != "src/hooks/index.js" {
		t.Errorf("expected src/hooks/index.js, got %q (%v)", got, ok)
	}
}

func TestResolve_ConfiguredAlias(t *testing.T) {
	opts := DefaultOptions()
	opts.AliasPrefix = "~/"
	opts.AliasTarget = "web/"
	known := NewPathSet([]string{"web/lib/util.ts", "src/lib/util.ts"})

	got, ok := Resolve("~/lib/util", "x", known, opts)
	if !ok || got != "web/lib/util.ts" {
		t.Errorf("expected web/lib/util.ts, got %q (%v)", got, ok)
	}
	if _, ok := Resolve("@/lib/util", "x", known, opts); ok {
		t.Error("expected default alias to be inert once reconfigured")
	}
}

func TestResolveAll(t *testing.T) {
	known := NewPathSet([]string{"a.ts", "b.ts"})
	r := New(DefaultOptions(), known)
	got := r.ResolveAll([]string{"./b", "./missing", "./b", "./a"}, "")
	want := []string{"b.ts", "b.ts", "a.ts"}
	if len(got) != len(want) {
		t.Fatalf("ResolveAll = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveAll[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolve_RootPackage(t *testing.T) {
	known := NewPathSet([]string{"__init__.py", "main.py", "index.ts"})
	opts := DefaultOptions()
	opts.IndexExtensions = nil

	got, ok := Resolve(".", "", known, opts)
	if !ok || got != "__init__.py" {
		t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, true)", ".", "", got, ok, "__init__.py")
	}

	got, ok = Resolve("..", "", NewPathSet([]string{"index.ts"}), DefaultOptions())
	if !ok || got != "index.ts" {
		t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, true)", "..", "", got, ok, "index.ts")
	}

	if got, ok := Resolve(".", "", NewPathSet([]string{".ts", "main.py"}), DefaultOptions()); ok {
		t.Errorf("root candidate must not probe bare extensions, got %q", got)
	}
}
