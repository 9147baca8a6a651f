package model

import "strings"

// PhraseCandidate is a phrase reported by an external detector.
// It carries no position; the locator anchors it against the source text.
type PhraseCandidate struct {
	Phrase      string `json:"phrase"`
	Reason      Reason `json:"reason"`
	Action      Action `json:"action"`
	Replacement string `json:"replacement,omitempty"`
}

// Reason classifies why a phrase was flagged
type Reason string

const (
	ReasonClickbait         Reason = "clickbait"          // Curiosity-gap or sensational hooks
	ReasonUrgencyInflation  Reason = "urgency_inflation"  // BREAKING, JUST IN, artificial urgency
	ReasonEmotionalTrigger  Reason = "emotional_trigger"  // Loaded verbs and adjectives (slams, shocking)
	ReasonSelling           Reason = "selling"            // Promotional or commercial language
	ReasonAgendaSignaling   Reason = "agenda_signaling"   // Ideological code words
	ReasonRhetoricalFraming Reason = "rhetorical_framing" // Framing that presupposes a conclusion
	ReasonEditorialVoice    Reason = "editorial_voice"    // Opinion inserted into reporting
	ReasonSelectiveQuoting  Reason = "selective_quoting"  // Scare quotes, cherry-picked fragments
)

// DefaultReason is used when a detector reports a category we do not know
const DefaultReason = ReasonRhetoricalFraming

// Action is what the neutralizer does with a flagged phrase
type Action string

const (
	ActionRemove  Action = "remove"
	ActionReplace Action = "replace"
	ActionSoften  Action = "soften"
)

// DefaultAction is used when a detector reports an action we do not know
const DefaultAction = ActionSoften

// reasonTable maps canonical names and legacy aliases to reasons.
// Keys are normalized with normalizeKey.
var reasonTable = map[string]Reason{
	"clickbait":              ReasonClickbait,
	"click_bait":             ReasonClickbait,
	"curiosity_gap":          ReasonClickbait,
	"sensationalism":         ReasonClickbait,
	"urgency_inflation":      ReasonUrgencyInflation,
	"urgency":                ReasonUrgencyInflation,
	"false_urgency":          ReasonUrgencyInflation,
	"emotional_trigger":      ReasonEmotionalTrigger,
	"emotional":              ReasonEmotionalTrigger,
	"emotional_language":     ReasonEmotionalTrigger,
	"emotional_manipulation": ReasonEmotionalTrigger,
	"loaded_language":        ReasonEmotionalTrigger,
	"selling":                ReasonSelling,
	"promotional":            ReasonSelling,
	"sales":                  ReasonSelling,
	"agenda_signaling":       ReasonAgendaSignaling,
	"agenda_signalling":      ReasonAgendaSignaling,
	"agenda":                 ReasonAgendaSignaling,
	"ideological":            ReasonAgendaSignaling,
	"rhetorical_framing":     ReasonRhetoricalFraming,
	"framing":                ReasonRhetoricalFraming,
	"rhetorical":             ReasonRhetoricalFraming,
	"editorial_voice":        ReasonEditorialVoice,
	"editorial":              ReasonEditorialVoice,
	"opinion":                ReasonEditorialVoice,
	"editorializing":         ReasonEditorialVoice,
	"selective_quoting":      ReasonSelectiveQuoting,
	"scare_quotes":           ReasonSelectiveQuoting,
	"quote_mining":           ReasonSelectiveQuoting,
}

var actionTable = map[string]Action{
	"remove":     ActionRemove,
	"delete":     ActionRemove,
	"drop":       ActionRemove,
	"strip":      ActionRemove,
	"replace":    ActionReplace,
	"rewrite":    ActionReplace,
	"substitute": ActionReplace,
	"soften":     ActionSoften,
	"tone_down":  ActionSoften,
	"neutralize": ActionSoften,
}

// Reasons returns the canonical reason set in display order
func Reasons() []Reason {
	return []Reason{
		ReasonClickbait,
		ReasonUrgencyInflation,
		ReasonEmotionalTrigger,
		ReasonSelling,
		ReasonAgendaSignaling,
		ReasonRhetoricalFraming,
		ReasonEditorialVoice,
		ReasonSelectiveQuoting,
	}
}

// ParseReason looks up a free-text category. ok is false when the input is
// not a known name or alias; the returned reason is then DefaultReason.
func ParseReason(s string) (Reason, bool) {
	if r, ok := reasonTable[normalizeKey(s)]; ok {
		return r, true
	}
	return DefaultReason, false
}

// ParseAction looks up a free-text action, falling back to DefaultAction
func ParseAction(s string) (Action, bool) {
	if a, ok := actionTable[normalizeKey(s)]; ok {
		return a, true
	}
	return DefaultAction, false
}

// Label returns a human-readable label for the reason
func (r Reason) Label() string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// normalizeKey lowercases and folds separators so "Emotional Trigger",
// "emotional-trigger" and "EMOTIONAL_TRIGGER" share a key
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
	return strings.Trim(s, "_")
}
