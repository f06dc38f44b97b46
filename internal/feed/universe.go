package feed

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
)

// Universe is the set of symbols to screen plus their display names. The
// Symbols slice is the canonical enumeration order: it is fixed before any
// parallel dispatch so downstream stable sorts stay deterministic.
type Universe struct {
	Symbols []string
	Names   map[string]string
}

// NewUniverse builds a universe from an explicit symbol list and name map,
// de-duplicating while preserving first-seen order.
func NewUniverse(symbols []string, names map[string]string) *Universe {
	u := &Universe{Names: make(map[string]string, len(names))}
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		u.Symbols = append(u.Symbols, sym)
	}
	for sym, name := range names {
		u.Names[sym] = name
	}
	return u
}

// LoadUniverseFile reads a universe from a CSV-style file with one
// "symbol,name" pair per line (name optional). Lines starting with # are
// skipped. Symbols are sorted to fix the canonical enumeration order.
func LoadUniverseFile(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open universe file")
	}
	defer f.Close()

	var symbols []string
	names := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		sym := strings.TrimSpace(parts[0])
		if sym == "" {
			continue
		}
		symbols = append(symbols, sym)
		if len(parts) == 2 {
			if name := strings.TrimSpace(parts[1]); name != "" {
				names[sym] = name
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read universe file")
	}
	sort.Strings(symbols)
	return NewUniverse(symbols, names), nil
}

// Name returns the display name for a symbol, falling back to the symbol.
func (u *Universe) Name(symbol string) string {
	if name, ok := u.Names[symbol]; ok && name != "" {
		return name
	}
	return symbol
}
