package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/neutralizer/internal/cache"
	"github.com/ppiankov/neutralizer/internal/chunk"
	"github.com/ppiankov/neutralizer/internal/extract"
	"github.com/ppiankov/neutralizer/internal/llm"
	"github.com/ppiankov/neutralizer/internal/logging"
	"github.com/ppiankov/neutralizer/internal/model"
	"github.com/ppiankov/neutralizer/internal/score"
	"github.com/ppiankov/neutralizer/internal/span"
	"github.com/ppiankov/neutralizer/internal/validate"
	"github.com/ppiankov/neutralizer/internal/worker"
)

// ErrNoDetector is returned when neither a detector nor offline candidates
// are available
var ErrNoDetector = errors.New("no phrase detector configured and no candidates supplied")

// Throttle delays calls to a named provider
type Throttle interface {
	Wait(ctx context.Context, key string) error
}

// Deps are the collaborators a pipeline calls out to. Any of them may be nil:
// without a detector only offline candidates are processed, without a
// rewriter no diff is computed.
type Deps struct {
	Detector       llm.Detector
	Rewriter       llm.Rewriter
	Provider       string // Provider name for cache keys, throttling and the report
	Model          string
	Cache          cache.Cache
	Throttle       Throttle
	FalsePositives *span.FalsePositives
	Logger         *log.Logger
}

// BuildDeps wires the configured LLM provider, cache, limiter and
// false-positive table. A config without a provider yields Deps without a
// detector.
func BuildDeps(cfg *model.Config, logger *log.Logger) (Deps, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	fp, err := LoadFalsePositives(cfg.Filter.FalsePositivesFile, cfg.Filter.ExtraFalsePositives)
	if err != nil {
		return Deps{}, err
	}

	deps := Deps{
		Cache:          cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL),
		Throttle:       worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		FalsePositives: fp,
		Logger:         logger,
	}

	llmConfig := llm.ConfigFromModel(cfg.LLM)
	llmConfig.Logger = logger
	if llmConfig.APIKey == "" {
		llmConfig.APIKey = llm.APIKeyFromEnv(llmConfig.Provider)
	}
	if llmConfig.BaseURL == "" {
		llmConfig.BaseURL = llm.BaseURLFromEnv(llmConfig.Provider)
	}

	provider, err := llm.NewProvider(llmConfig)
	if errors.Is(err, llm.ErrNoProvider) {
		return deps, nil
	}
	if err != nil {
		return Deps{}, fmt.Errorf("init LLM provider: %w", err)
	}

	prompts := llm.DefaultPrompts()
	if cfg.LLM.PromptsFile != "" {
		if prompts, err = llm.LoadPrompts(cfg.LLM.PromptsFile); err != nil {
			return Deps{}, err
		}
	}

	client := llm.NewClient(provider, prompts)
	deps.Detector = client
	deps.Rewriter = client
	deps.Provider = provider.Name()
	deps.Model = cfg.LLM.Model
	return deps, nil
}

// Pipeline turns an article and detector output into a validated span report
type Pipeline struct {
	config    *model.Config
	deps      Deps
	planner   chunk.Planner
	locator   *span.Locator
	filter    *span.Filter
	validator *validate.Validator
	scorer    *score.Scorer
	loader    *Loader
	logger    *log.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}

	return &Pipeline{
		config:    cfg,
		deps:      deps,
		planner:   chunk.NewPlanner(cfg.Chunking),
		locator:   span.NewLocator(deps.Logger),
		filter:    span.NewFilter(deps.FalsePositives, deps.Logger),
		validator: validate.NewValidator(deps.Logger),
		scorer:    score.NewScorer(),
		loader:    NewLoader(DefaultMaxBytes, os.Stdin),
		logger:    deps.Logger,
	}
}

// Request is one article to neutralize
type Request struct {
	Document *Document

	// Candidates is detector output supplied up front (any shape ParseBatch
	// accepts). When set, no detector is called.
	Candidates string

	// Rewritten is a neutral version supplied up front. When set, it is
	// diffed instead of calling the rewriter.
	Rewritten string

	// Rewrite asks the rewriter for a neutral version
	Rewrite bool
}

// NeutralizeFile loads an article from path and neutralizes it
func (p *Pipeline) NeutralizeFile(ctx context.Context, path string) (*model.Report, error) {
	doc, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return p.Neutralize(ctx, Request{Document: doc, Rewrite: p.config.LLM.Rewrite})
}

// Neutralize runs the full reconciliation for one article
func (p *Pipeline) Neutralize(ctx context.Context, req Request) (*model.Report, error) {
	doc := req.Document
	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmptyArticle
	}
	text := doc.Text
	field := p.field()

	var stats model.SpanStats
	report := &model.Report{
		Subject:      doc.Subject,
		Source:       doc.Source,
		ProcessedAt:  time.Now().UTC(),
		OriginalText: text,
	}

	// 1. Phrase candidates → anchored spans
	var located []model.Span
	switch {
	case req.Candidates != "":
		batch := extract.ParseBatch(req.Candidates)
		if batch.Kind == extract.BatchInvalid {
			p.logger.Warn("Candidate input is not recognizable JSON", "source", doc.Source)
		}
		candidates, skipped := batch.Candidates()
		if skipped > 0 {
			p.logger.Warn("Skipped malformed candidates", "count", skipped)
		}
		stats.Candidates = len(candidates)
		located = p.locator.Locate(field, text, candidates)
		report.Chunks = 1

	case p.deps.Detector != nil:
		chunks := p.planner.Plan(text)
		report.Chunks = len(chunks)

		detected, info, err := p.detect(ctx, field, chunks, &stats)
		if err != nil {
			return nil, err
		}
		located = detected
		report.LLM = info

	default:
		return nil, ErrNoDetector
	}

	// 2. Deduplicate across chunks and passes
	located = span.ResolveOverlaps(located)
	stats.Located = len(located)

	// 3. Quote and false-positive filters
	filtered := p.filter.Run(text, located)
	stats.QuoteFiltered = len(filtered.Quoted)
	stats.FalsePositives = len(filtered.FalsePositives)
	final := filtered.Spans

	// 4. Changes the rewriter made without reporting them
	rewritten, err := p.rewrite(ctx, req, text, report)
	if err != nil {
		return nil, err
	}
	if rewritten != "" {
		report.RewrittenText = rewritten
		diffSpans := span.ExtractDiff(field, text, rewritten)
		final = span.Merge(final, diffSpans)
		for _, s := range final {
			if s.Origin == model.OriginDiff {
				stats.DiffDerived++
			}
		}
	}

	// 5. Last guard on every invariant
	final, violations := p.validator.Validate(text, final)
	stats.Final = len(final)

	report.Spans = final
	report.Stats = stats
	report.Violations = violations
	report.Score = p.scorer.Calculate(score.Input{
		Text:       text,
		Spans:      final,
		Stats:      stats,
		Violations: len(violations),
		Rewritten:  rewritten != "",
	})

	p.logger.Info("Neutralized article",
		"subject", doc.Subject,
		"chunks", report.Chunks,
		"candidates", stats.Candidates,
		"spans", stats.Final,
		"confidence", report.Score.Confidence)

	return report, nil
}

// detectCall is one (chunk, pass) request
type detectCall struct {
	chunk model.Chunk
	pass  string
}

// detect fans out one detector call per chunk and pass. A failed call
// contributes no spans; only cancellation aborts the run.
func (p *Pipeline) detect(ctx context.Context, field string, chunks []model.Chunk, stats *model.SpanStats) ([]model.Span, *model.LLMInfo, error) {
	passes := p.passes()

	calls := make([]detectCall, 0, len(chunks)*len(passes))
	for _, c := range chunks {
		for _, pass := range passes {
			calls = append(calls, detectCall{chunk: c, pass: pass})
		}
	}

	results := make([][]model.Span, len(calls))
	var failed, tokens, candidates atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.chunkWorkers())

	for i, call := range calls {
		g.Go(func() error {
			raw, used, err := p.detectOne(gctx, call.pass, call.chunk.Text)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				p.logger.Warn("Detector call failed", "chunk", call.chunk.Index, "pass", call.pass, "err", err)
				return nil
			}
			tokens.Add(int64(used))

			batch := extract.ParseBatch(raw)
			found, skipped := batch.Candidates()
			if batch.Kind == extract.BatchInvalid {
				p.logger.Warn("Unrecognized detector response", "chunk", call.chunk.Index, "pass", call.pass)
			}
			if skipped > 0 {
				p.logger.Debug("Skipped malformed entries", "chunk", call.chunk.Index, "pass", call.pass, "count", skipped)
			}
			candidates.Add(int64(len(found)))

			local := p.locator.Locate(field, call.chunk.Text, found)
			results[i] = chunk.TranslateSpans(call.chunk, local)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("detect: %w", err)
	}

	var spans []model.Span
	for _, r := range results {
		spans = append(spans, r...)
	}

	stats.Candidates = int(candidates.Load())
	stats.DetectorCalls = len(calls)
	stats.FailedCalls = int(failed.Load())

	info := &model.LLMInfo{
		Provider:   p.deps.Provider,
		Model:      p.deps.Model,
		Passes:     passes,
		TokensUsed: int(tokens.Load()),
	}
	return spans, info, nil
}

// detectOne returns the raw detector output for one chunk and pass, from the
// cache when possible. Only parseable responses are cached.
func (p *Pipeline) detectOne(ctx context.Context, pass, text string) (string, int, error) {
	key := cache.DetectionKey(p.deps.Provider, p.deps.Model, pass, text)
	if cached, ok := p.deps.Cache.Get(key); ok {
		p.logger.Debug("Detector cache hit", "pass", pass)
		return string(cached), 0, nil
	}

	if p.deps.Throttle != nil {
		if err := p.deps.Throttle.Wait(ctx, p.deps.Provider); err != nil {
			return "", 0, err
		}
	}

	resp, err := p.deps.Detector.Detect(ctx, pass, text)
	if err != nil {
		return "", 0, err
	}

	if extract.ParseBatch(resp.Text).Kind != extract.BatchInvalid {
		if err := p.deps.Cache.Set(key, []byte(resp.Text), 0); err != nil {
			p.logger.Warn("Failed to cache detector response", "err", err)
		}
	}
	return resp.Text, resp.TokensUsed, nil
}

// rewrite returns the neutral version of text: supplied, cached or freshly
// generated. An empty result means no diff is computed. A failed rewrite is
// logged and skipped.
func (p *Pipeline) rewrite(ctx context.Context, req Request, text string, report *model.Report) (string, error) {
	if req.Rewritten != "" {
		return req.Rewritten, nil
	}
	if !req.Rewrite || p.deps.Rewriter == nil {
		return "", nil
	}

	key := cache.RewriteKey(p.deps.Provider, p.deps.Model, text)
	if cached, ok := p.deps.Cache.Get(key); ok {
		p.markRewritten(report, 0)
		return string(cached), nil
	}

	if p.deps.Throttle != nil {
		if err := p.deps.Throttle.Wait(ctx, p.deps.Provider); err != nil {
			return "", fmt.Errorf("rewrite: %w", err)
		}
	}

	resp, err := p.deps.Rewriter.Rewrite(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.logger.Warn("Rewrite failed; continuing with detector spans only", "err", err)
		return "", nil
	}
	if strings.TrimSpace(resp.Text) == "" {
		p.logger.Warn("Rewriter returned empty text")
		return "", nil
	}

	if err := p.deps.Cache.Set(key, []byte(resp.Text), 0); err != nil {
		p.logger.Warn("Failed to cache rewrite", "err", err)
	}
	p.markRewritten(report, resp.TokensUsed)
	return resp.Text, nil
}

func (p *Pipeline) markRewritten(report *model.Report, tokens int) {
	if report.LLM == nil {
		report.LLM = &model.LLMInfo{Provider: p.deps.Provider, Model: p.deps.Model}
	}
	report.LLM.Rewritten = true
	report.LLM.TokensUsed += tokens
}

func (p *Pipeline) field() string {
	if p.config.Output.Field != "" {
		return p.config.Output.Field
	}
	return "body"
}

func (p *Pipeline) passes() []string {
	if len(p.config.LLM.Passes) > 0 {
		return p.config.LLM.Passes
	}
	return []string{model.PassHighRecall, model.PassAdversarial}
}

func (p *Pipeline) chunkWorkers() int {
	if p.config.Concurrency.ChunkWorkers > 0 {
		return p.config.Concurrency.ChunkWorkers
	}
	return 4
}
