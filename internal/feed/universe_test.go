package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewUniverseDeduplicates(t *testing.T) {
	u := NewUniverse([]string{"AAA", "BBB", "AAA", " ", "CCC", "BBB"}, map[string]string{"AAA": "Alpha"})

	want := []string{"AAA", "BBB", "CCC"}
	if len(u.Symbols) != len(want) {
		t.Fatalf("symbols = %v, want %v", u.Symbols, want)
	}
	for i, sym := range want {
		if u.Symbols[i] != sym {
			t.Errorf("symbols[%d] = %s, want %s: first-seen order must hold", i, u.Symbols[i], sym)
		}
	}
	if u.Name("AAA") != "Alpha" {
		t.Errorf("Name(AAA) = %s, want Alpha", u.Name("AAA"))
	}
	if u.Name("BBB") != "BBB" {
		t.Errorf("Name(BBB) = %s, want symbol fallback", u.Name("BBB"))
	}
}

func TestLoadUniverseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.csv")
	content := `# screening universe
ZZZ,Last Corp
AAA,First Corp

MMM
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	u, err := LoadUniverseFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"AAA", "MMM", "ZZZ"}
	if len(u.Symbols) != len(want) {
		t.Fatalf("symbols = %v, want %v", u.Symbols, want)
	}
	for i, sym := range want {
		if u.Symbols[i] != sym {
			t.Errorf("symbols[%d] = %s, want %s: file universes are sorted", i, u.Symbols[i], sym)
		}
	}
	if u.Name("ZZZ") != "Last Corp" {
		t.Errorf("Name(ZZZ) = %s, want Last Corp", u.Name("ZZZ"))
	}
	if u.Name("MMM") != "MMM" {
		t.Errorf("Name(MMM) = %s, want symbol fallback", u.Name("MMM"))
	}
}

func TestLoadUniverseFileMissing(t *testing.T) {
	if _, err := LoadUniverseFile(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected an error for a missing universe file")
	}
}
