// Package artifact describes the kinds of derived outputs NotebookLM can
// generate and the order in which they are requested.
package artifact

import (
	"slices"
	"strings"
)

// Kind identifies an artifact type.
type Kind string

const (
	Report      Kind = "report"
	MindMap     Kind = "mind-map"
	Slides      Kind = "slides"
	Infographic Kind = "infographic"
	Quiz        Kind = "quiz"
	Flashcards  Kind = "flashcards"
	Audio       Kind = "audio"
	Video       Kind = "video"
)

// QuotaPremium is the quota bucket shared by slides and infographics.
const QuotaPremium = "premium"

// Spec is the static description of an artifact kind.
type Spec struct {
	Kind        Kind
	DisplayName string
	// DailyQuota marks kinds subject to a daily generation limit.
	DailyQuota bool
	// QuotaGroup names a bucket shared with other kinds; empty when the kind has its own.
	QuotaGroup string
	// Localized kinds accept a language parameter.
	Localized bool
}

// catalog lists every kind in generation order: unlimited kinds first, then
// limited kinds by typical generation time, longest last.
var catalog = []Spec{
	{Kind: Report, DisplayName: "Report", Localized: true},
	{Kind: MindMap, DisplayName: "Mind map"},
	{Kind: Slides, DisplayName: "Slide deck", DailyQuota: true, QuotaGroup: QuotaPremium, Localized: true},
	{Kind: Infographic, DisplayName: "Infographic", DailyQuota: true, QuotaGroup: QuotaPremium, Localized: true},
	{Kind: Quiz, DisplayName: "Quiz", DailyQuota: true},
	{Kind: Flashcards, DisplayName: "Flashcards", DailyQuota: true},
	{Kind: Audio, DisplayName: "Audio overview", DailyQuota: true, Localized: true},
	{Kind: Video, DisplayName: "Video overview", DailyQuota: true, Localized: true},
}

// aliases maps the spellings used by remote listings onto kinds.
var aliases = map[string]Kind{
	"mind_map":        MindMap,
	"mindmap":         MindMap,
	"slide_deck":      Slides,
	"slide-deck":      Slides,
	"slidedeck":       Slides,
	"slide":           Slides,
	"audio_overview":  Audio,
	"audio-overview":  Audio,
	"video_overview":  Video,
	"video-overview":  Video,
	"flashcard":       Flashcards,
	"flash_cards":     Flashcards,
	"briefing_doc":    Report,
	"study_guide":     Report,
	"blog_post":       Report,
	"infographics":    Infographic,
	"quizzes":         Quiz,
	"reports":         Report,
	"audio_overviews": Audio,
}

// All returns every kind in generation order.
func All() []Kind {
	kinds := make([]Kind, len(catalog))
	for i, s := range catalog {
		kinds[i] = s.Kind
	}
	return kinds
}

// DefaultKinds are requested when the caller asks for nothing specific:
// the kinds without a daily limit.
func DefaultKinds() []Kind {
	var kinds []Kind
	for _, s := range catalog {
		if !s.DailyQuota {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}

// Lookup returns the Spec for k.
func Lookup(k Kind) (Spec, bool) {
	for _, s := range catalog {
		if s.Kind == k {
			return s, true
		}
	}
	return Spec{}, false
}

// MustLookup is Lookup for kinds known to be valid.
func MustLookup(k Kind) Spec {
	s, ok := Lookup(k)
	if !ok {
		panic("artifact: unknown kind " + string(k))
	}
	return s
}

// Rank returns k's position in generation order, or -1 for unknown kinds.
func Rank(k Kind) int {
	for i, s := range catalog {
		if s.Kind == k {
			return i
		}
	}
	return -1
}

// ParseKind normalizes a kind name or remote type label.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "artifact_type_")
	if k, ok := aliases[s]; ok {
		return k, true
	}
	k := Kind(strings.ReplaceAll(s, "_", "-"))
	if Rank(k) >= 0 {
		return k, true
	}
	return "", false
}

// Sorted returns the known kinds of ks in generation order without duplicates.
func Sorted(ks []Kind) []Kind {
	out := make([]Kind, 0, len(ks))
	for _, k := range ks {
		if Rank(k) >= 0 && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, func(a, b Kind) int { return Rank(a) - Rank(b) })
	return out
}

// Names returns the kinds as strings.
func Names(ks []Kind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return out
}
