package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/neutralizer/internal/model"
	"github.com/ppiankov/neutralizer/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	timeout        time.Duration
	maxBytes       int64
	noCache        bool
	noFooter       bool
	rewrite        bool
	llmProvider    string
	llmModel       string
	passes         []string
	candidatesFile string
	rewrittenFile  string
)

// neutralizeCmd represents the neutralize command
var neutralizeCmd = &cobra.Command{
	Use:   "neutralize <article>",
	Short: "Find manipulative spans in one article",
	Long: `Neutralize reads one article (plain text, Markdown or HTML; "-" for stdin)
and reports the phrases a neutral rewrite would change:
- Detect candidate phrases with an LLM, chunk by chunk and pass by pass
- Anchor every phrase to exact offsets in the original text
- Drop spans inside quoted speech and known false positives
- Optionally diff against a neutral rewrite to catch unreported changes
- Validate every span and score how much of the text was touched

Detector output and rewrites can also be supplied from files, in which case
no LLM is called.

Example:
  neutralizer neutralize article.txt --llm-provider openai
  neutralizer neutralize page.html --llm-provider ollama --llm-model llama3.1 --md report.md
  neutralizer neutralize article.txt --candidates phrases.json --rewritten neutral.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runNeutralize,
}

func init() {
	rootCmd.AddCommand(neutralizeCmd)

	// Output flags
	neutralizeCmd.Flags().StringVar(&outJSON, "json", "-", `output JSON path ("-" for stdout, "" to skip)`)
	neutralizeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	neutralizeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Input flags
	neutralizeCmd.Flags().Int64Var(&maxBytes, "max-bytes", pipeline.DefaultMaxBytes, "max article bytes to read")
	neutralizeCmd.Flags().StringVar(&candidatesFile, "candidates", "", "use detector output from this file instead of calling an LLM")
	neutralizeCmd.Flags().StringVar(&rewrittenFile, "rewritten", "", "diff against this neutral rewrite instead of generating one")

	// Run flags
	neutralizeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	neutralizeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the detector response cache")

	// LLM flags
	neutralizeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	neutralizeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	neutralizeCmd.Flags().StringSliceVar(&passes, "passes", nil, "detection passes to run (high_recall, adversarial)")
	neutralizeCmd.Flags().BoolVar(&rewrite, "rewrite", false, "also request a neutral rewrite and diff it")
}

func runNeutralize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logger, err := newLogger()
	if err != nil {
		return err
	}

	var candidates, rewritten string
	if candidatesFile != "" {
		if candidates, err = readInput(candidatesFile); err != nil {
			return err
		}
	}
	if rewrittenFile != "" {
		if rewritten, err = readInput(rewrittenFile); err != nil {
			return err
		}
	}

	doc, err := pipeline.NewLoader(maxBytes, os.Stdin).Load(args[0])
	if err != nil {
		return err
	}
	logger.Debug("Loaded article", "source", doc.Source, "bytes", len(doc.Text), "html", doc.HTML)

	deps, err := pipeline.BuildDeps(cfg, logger)
	if err != nil {
		return err
	}
	p := pipeline.NewPipeline(cfg, deps)

	report, err := p.Neutralize(ctx, pipeline.Request{
		Document:   doc,
		Candidates: candidates,
		Rewritten:  rewritten,
		Rewrite:    cfg.LLM.Rewrite,
	})
	if err != nil {
		return fmt.Errorf("neutralize failed: %w", err)
	}

	// Render outputs
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if !quiet {
		renderer.RenderSummary(os.Stderr, report)
	}

	return nil
}

// applyFlags overrides config values with the flags the user set
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("passes") {
		cfg.LLM.Passes = passes
	}
	if flags.Changed("rewrite") {
		cfg.LLM.Rewrite = rewrite
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
}

// readInput reads a side input file, refusing "-" since stdin may carry the article
func readInput(path string) (string, error) {
	if strings.TrimSpace(path) == "-" {
		return "", fmt.Errorf("side inputs cannot be read from stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
