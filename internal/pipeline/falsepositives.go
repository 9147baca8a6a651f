package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/neutralizer/internal/span"
)

// falsePositiveFile is the on-disk shape of a false-positive list.
// A bare YAML list of phrases is accepted as well.
type falsePositiveFile struct {
	Phrases  []string `yaml:"phrases"`
	Patterns []string `yaml:"patterns"`
}

// LoadFalsePositives builds the false-positive table: the built-in entries,
// then extra phrases, then the phrases and patterns from path (if set)
func LoadFalsePositives(path string, extra []string) (*span.FalsePositives, error) {
	table := span.DefaultFalsePositives().With(extra...)
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read false positives: %w", err)
	}

	var file falsePositiveFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		var list []string
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			return table, fmt.Errorf("parse false positives: %w", err)
		}
		file.Phrases = list
	}

	if len(file.Patterns) == 0 {
		return table.With(file.Phrases...), nil
	}
	return table.WithPatterns(file.Patterns...).With(file.Phrases...), nil
}

// ReloadFalsePositives re-reads the configured false-positive file and swaps
// the filter's table. On error the current table stays in place.
func (p *Pipeline) ReloadFalsePositives() error {
	table, err := LoadFalsePositives(p.config.Filter.FalsePositivesFile, p.config.Filter.ExtraFalsePositives)
	if err != nil {
		return err
	}
	p.filter.SetFalsePositives(table)
	p.logger.Info("Reloaded false positives", "file", p.config.Filter.FalsePositivesFile, "phrases", table.Len())
	return nil
}

// WatchFalsePositives reloads the false-positive file whenever it changes,
// until ctx is done. Without a configured file it returns immediately.
// The directory is watched so editors that replace the file are seen too.
func (p *Pipeline) WatchFalsePositives(ctx context.Context) error {
	path := p.config.Filter.FalsePositivesFile
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch false positives: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch false positives: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := p.ReloadFalsePositives(); err != nil {
				// A half-written file fails to parse; the next write retries
				p.logger.Warn("False positives not reloaded", "file", path, "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("False-positive watcher error", "err", err)
		}
	}
}
