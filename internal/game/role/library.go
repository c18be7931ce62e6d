package role

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/cuihairu/werewolf/internal/hotreload"
)

// Library holds the custom role definitions shared by newly created games.
// Running games keep the definitions they were created with.
type Library struct {
	catalog Catalog
	logger  *slog.Logger

	mu       sync.RWMutex
	defs     []Definition
	warnings []string
}

// NewLibrary returns an empty library over the catalog.
func NewLibrary(c Catalog, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{catalog: c, logger: logger}
}

// Catalog returns the predefined catalog.
func (l *Library) Catalog() Catalog { return l.catalog }

// Definitions returns a copy of the current custom definitions.
func (l *Library) Definitions() []Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Definition(nil), l.defs...)
}

// Warnings returns the warnings of the last successful load.
func (l *Library) Warnings() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.warnings...)
}

// Load replaces the library content. Invalid content leaves the library unchanged.
func (l *Library) Load(data []byte) error {
	defs, err := ParseDefinitions(data)
	if err != nil {
		return err
	}
	warnings, err := ValidateAll(defs, l.catalog)
	if err != nil {
		return err
	}
	if _, err := NewRegistry(l.catalog, defs...); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	l.mu.Lock()
	l.defs = defs
	l.warnings = warnings
	l.mu.Unlock()
	for _, w := range warnings {
		l.logger.Warn("custom role warning", "warning", w)
	}
	l.logger.Info("custom roles loaded", "count", len(defs))
	return nil
}

// LoadFile loads definitions from a YAML or JSON file.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read roles file: %w", err)
	}
	return l.Load(data)
}

// Watch reloads the file on change.
func (l *Library) Watch(w *hotreload.Watcher, path string) error {
	return w.Watch(path, func(_ context.Context, ev hotreload.ReloadEvent) error {
		if err := l.Load(ev.Content); err != nil {
			l.logger.Error("custom roles reload rejected", "path", ev.Path, "error", err)
			return err
		}
		return nil
	})
}

// Merge returns the library definitions with the per-game ones applied.
// Per-game definitions override library definitions with the same name.
func (l *Library) Merge(extra ...Definition) []Definition {
	defs := l.Definitions()
	if len(extra) == 0 {
		return defs
	}
	override := make(map[string]bool, len(extra))
	for _, d := range extra {
		override[d.Name] = true
	}
	kept := defs[:0]
	for _, d := range defs {
		if !override[d.Name] {
			kept = append(kept, d)
		}
	}
	return append(kept, extra...)
}

// Registry builds a registry of catalog, library and per-game definitions.
func (l *Library) Registry(extra ...Definition) (*Registry, error) {
	return NewRegistry(l.catalog, l.Merge(extra...)...)
}
