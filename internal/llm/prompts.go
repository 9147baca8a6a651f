package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/neutralizer/internal/model"
)

// PromptSet holds every prompt the detector and rewriter send.
// It is built once by the caller and passed in; nothing here is global.
type PromptSet struct {
	// System is sent with every detection request
	System string `yaml:"system"`

	// Passes maps a pass name to its instructions
	Passes map[string]string `yaml:"passes"`

	// Rewrite is the system prompt for neutral rewriting
	Rewrite string `yaml:"rewrite"`
}

const detectionSystem = `You are a news-language analyst. You identify manipulative wording in news articles. You never judge facts, only wording.`

const responseFormat = `Respond with JSON only, in this shape:
{"phrases": [{"phrase": "<exact text from the article>", "reason": "<category>", "action": "remove|replace|soften", "replacement": "<neutral wording or empty>"}]}

Rules:
- "phrase" must be copied character for character from the article.
- Keep phrases short: the manipulative words only, not whole sentences.
- Do not report words inside quotation marks; quoted speech is reported, not authored.
- Use one of these categories for "reason": %s.
- If nothing is manipulative, respond with {"phrases": []}.`

const highRecallInstructions = `List every phrase in the article below that uses manipulative language: clickbait hooks, artificial urgency, emotionally loaded verbs and adjectives, promotional wording, ideological code words, framing that presupposes a conclusion, editorial opinion in reporting, and scare quotes. Prefer reporting too much over missing something.`

const adversarialInstructions = `Act as a skeptical editor reviewing the article below after a first pass has already caught the obvious problems. Look for subtle manipulation: hedged insinuation, selective emphasis, loaded attribution verbs ("admitted", "conceded", "claimed"), intensifiers, and framing that steers the reader. Report only wording a careful editor would change.`

const rewriteSystem = `You rewrite news articles in neutral language. Keep every fact, name, number and date. Keep quotations exactly as written. Remove urgency markers, loaded adjectives and editorial voice. Do not add anything. Output only the rewritten article text, with the same paragraph breaks.`

// DefaultPrompts returns the built-in prompts
func DefaultPrompts() PromptSet {
	return PromptSet{
		System: detectionSystem,
		Passes: map[string]string{
			model.PassHighRecall:  highRecallInstructions,
			model.PassAdversarial: adversarialInstructions,
		},
		Rewrite: rewriteSystem,
	}
}

// LoadPrompts reads a YAML prompt file. Fields missing from the file keep
// their default values.
func LoadPrompts(path string) (PromptSet, error) {
	prompts := DefaultPrompts()

	data, err := os.ReadFile(path)
	if err != nil {
		return prompts, fmt.Errorf("read prompts: %w", err)
	}

	var override PromptSet
	if err := yaml.Unmarshal(data, &override); err != nil {
		return prompts, fmt.Errorf("parse prompts: %w", err)
	}

	if strings.TrimSpace(override.System) != "" {
		prompts.System = override.System
	}
	if strings.TrimSpace(override.Rewrite) != "" {
		prompts.Rewrite = override.Rewrite
	}
	for pass, instructions := range override.Passes {
		if strings.TrimSpace(instructions) != "" {
			prompts.Passes[pass] = instructions
		}
	}

	return prompts, nil
}

// DetectionPrompt builds the user prompt for one pass over one chunk
func (p PromptSet) DetectionPrompt(pass, text string) (string, error) {
	instructions, ok := p.Passes[pass]
	if !ok {
		return "", fmt.Errorf("unknown detection pass: %s", pass)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, responseFormat, reasonList())
	b.WriteString("\n\nArticle:\n<<<\n")
	b.WriteString(text)
	b.WriteString("\n>>>")
	return b.String(), nil
}

func reasonList() string {
	reasons := model.Reasons()
	names := make([]string, len(reasons))
	for i, r := range reasons {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
