package dialect

import (
	"sort"
	"strings"
	"sync"
)

// Preset registry
var (
	presetsMu sync.RWMutex
	presets   = make(map[string]Dialect)
)

// Get returns a named preset dialect.
func Get(name string) (Dialect, bool) {
	presetsMu.RLock()
	defer presetsMu.RUnlock()
	d, ok := presets[strings.ToLower(name)]
	return d, ok
}

// Register adds a preset to the global registry. Built-in presets are
// registered at init time; callers may add their own.
func Register(name string, d Dialect) {
	presetsMu.Lock()
	defer presetsMu.Unlock()
	presets[strings.ToLower(name)] = d
}

// List returns all registered preset names (sorted).
func List() []string {
	presetsMu.RLock()
	defer presetsMu.RUnlock()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
