package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/neutralizer/internal/pipeline"
	"github.com/ppiankov/neutralizer/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	listFile     string
	batchTimeout time.Duration
	// noFooter, noCache, rewrite and the LLM flags are defined in neutralize.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Neutralize many articles in parallel",
	Long: `Batch neutralizes every article found in the given files and directories:
- Directories are walked for .txt, .md, .html and .htm files
- A list file (--list) adds one path per line
- Articles are processed in parallel with a configurable worker count
- One JSON and one Markdown report is written per article

Example:
  neutralizer batch ./articles --llm-provider openai
  neutralizer batch --list articles.txt --concurrency 8 --output-dir ./reports`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of articles processed in parallel")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./neutralizer-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file listing article paths, one per line")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Inherit flags from neutralize command
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the detector response cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&rewrite, "rewrite", false, "also request a neutral rewrite and diff it")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	batchCmd.Flags().StringSliceVar(&passes, "passes", nil, "detection passes to run (high_recall, adversarial)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	if len(args) == 0 && listFile == "" {
		return fmt.Errorf("no articles given: pass paths or --list")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	paths, err := worker.CollectArticles(args)
	if err != nil {
		return err
	}
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return err
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no articles found")
	}

	logger.Info("Batch started",
		"articles", len(paths),
		"workers", cfg.Concurrency.Workers,
		"output", outputDir,
		"provider", cfg.LLM.Provider)

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	deps, err := pipeline.BuildDeps(cfg, logger)
	if err != nil {
		return err
	}
	p := pipeline.NewPipeline(cfg, deps)

	// Edits to the false-positive file apply to articles not yet processed
	go func() {
		if err := p.WatchFalsePositives(ctx); err != nil {
			logger.Warn("False-positive file not watched", "err", err)
		}
	}()

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results := processor.ProcessPaths(ctx, paths)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			logger.Error("Article failed", "path", result.Path, "err", result.Error)
			continue
		}

		// Generate output file names
		slug := reportName(result.Path, used)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			logger.Error("Failed to write JSON", "path", result.Path, "err", err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			logger.Error("Failed to write Markdown", "path", result.Path, "err", err)
			continue
		}

		successCount++
		if !quiet {
			renderer.RenderSummary(os.Stderr, result.Report)
		}
	}

	logger.Info("Batch complete",
		"total", len(results),
		"success", successCount,
		"failures", failureCount,
		"output", outputDir)

	if successCount == 0 {
		return fmt.Errorf("all %d articles failed", failureCount)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// reportName derives a unique report file name from an article path
func reportName(path string, used map[string]int) string {
	name := sanitizeFilename(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if name == "" || name == "." {
		name = "article"
	}

	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
