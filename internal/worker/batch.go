package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Neutralizer processes one article file
type Neutralizer interface {
	NeutralizeFile(ctx context.Context, path string) (*model.Report, error)
}

// ArticleJob represents one article to neutralize
type ArticleJob struct {
	Path        string
	Neutralizer Neutralizer
}

// Execute executes the article job
func (j *ArticleJob) Execute(ctx context.Context) Result {
	report, err := j.Neutralizer.NeutralizeFile(ctx, j.Path)
	if err != nil {
		return &ArticleResult{Path: j.Path, Error: err}
	}
	return &ArticleResult{Path: j.Path, Report: report}
}

// ArticleResult represents the result of an article job
type ArticleResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the article result
func (r *ArticleResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple articles concurrently
type BatchProcessor struct {
	neutralizer Neutralizer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(neutralizer Neutralizer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		neutralizer: neutralizer,
		concurrency: concurrency,
	}
}

// ProcessPaths neutralizes the given files concurrently. Results are in input
// order.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ArticleResult {
	if len(paths) == 0 {
		return []*ArticleResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ArticleJob{
			Path:        path,
			Neutralizer: b.neutralizer,
		})
	}

	results := pool.Wait()

	articleResults := make([]*ArticleResult, len(results))
	for i, result := range results {
		articleResults[i] = result.(*ArticleResult)
	}

	return articleResults
}

// ProcessFile reads article paths from a list file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ArticleResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads article paths from a file (one per line). Blank
// lines and # comments are skipped; relative paths resolve against the list
// file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// articleExtensions are the file types picked up from directories
var articleExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
}

// CollectArticles expands arguments into article files: directories are
// walked for known article extensions, files are taken as given
func CollectArticles(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if articleExtensions[strings.ToLower(filepath.Ext(path))] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}

		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}

	return paths, nil
}
