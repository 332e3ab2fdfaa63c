package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.py":         "import util\n",
		"lib/util.py":     "x = 1\n",
		"notes.txt":       "ignored",
		".cache/stale.py": "ignored",
	})

	sources, err := LoadDir(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 modules, got %v", sources)
	}
	if sources["main"] != "import util\n" || sources["util"] != "x = 1\n" {
		t.Errorf("unexpected sources: %v", sources)
	}
}

func TestLoadDirDuplicate(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/m.py": "",
		"b/m.py": "",
	})
	_, err := LoadDir(root, nil)
	if err == nil || !strings.Contains(err.Error(), "defined twice") {
		t.Fatalf("expected duplicate module error, got %v", err)
	}
}

func TestLoadDirsExtensions(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, map[string]string{"one.sp": "1"})
	writeFiles(t, b, map[string]string{"two.sp": "2", "three.py": "3"})

	sources, err := LoadDirs([]string{a, b}, []string{".sp"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 || sources["one"] != "1" || sources["two"] != "2" {
		t.Errorf("unexpected sources: %v", sources)
	}
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"main.py":         "main",
		"dir/sub/util.py": "util",
		"archive.tar.py":  "archive.tar",
		"no_extension":    "no_extension",
	}
	for path, want := range tests {
		if got := ModuleName(path); got != want {
			t.Errorf("ModuleName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestBundleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	sources := map[string]string{
		"main": "import util\nprint(util.x)\n",
		"util": "x = \"héllo\"\n",
	}

	created, err := CreateBundle(path, sources, "main")
	if err != nil {
		t.Fatal(err)
	}
	id := created.ID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("bundle id %q is not a uuid: %v", id, err)
	}
	if err := created.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := OpenBundle(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.ID() != id {
		t.Errorf("expected id %s, got %s", id, b.ID())
	}
	if b.Entry() != "main" {
		t.Errorf("expected entry main, got %s", b.Entry())
	}
	if b.Created().IsZero() {
		t.Error("expected creation time")
	}
	got, err := b.Sources()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(sources) {
		t.Fatalf("expected %d modules, got %d", len(sources), len(got))
	}
	for name, src := range sources {
		if got[name] != src {
			t.Errorf("module %s: expected %q, got %q", name, src, got[name])
		}
	}
}

func TestBundleErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := CreateBundle(filepath.Join(dir, "x.db"), map[string]string{"a": ""}, "main"); err == nil {
		t.Error("expected error for missing entry module")
	}
	if _, err := OpenBundle(filepath.Join(dir, "missing.db")); err == nil {
		t.Error("expected error for missing bundle file")
	}
}
