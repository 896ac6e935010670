package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/ytnb/internal/config"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

// ResolveInput contains parameters for the Resolve operation.
type ResolveInput struct {
	SourceID      string        // required
	Prefix        string        // default: "YT-"
	Title         string        // title used when a notebook must be created
	SourceURL     string        // attached to newly created notebooks
	SourceTimeout time.Duration // 0 attaches without waiting for processing
	TieBreak      string        // config.TieBreakNewest (default) or config.TieBreakFirst
}

// ResolveOutput contains the result of the Resolve operation.
type ResolveOutput struct {
	Notebook       notebooklm.Notebook `json:"notebook"`
	Created        bool                `json:"created"`
	SourceAttached bool                `json:"source_attached"`
	Warning        string              `json:"warning,omitempty"`
}

// Resolve finds the notebook whose title starts with Prefix+SourceID, or
// creates one titled Title and attaches SourceURL to it.
// A failed attachment is reported in Warning; the notebook is still returned.
func Resolve(ctx context.Context, client notebooklm.Client, input ResolveInput) (*ResolveOutput, error) {
	sourceID := strings.TrimSpace(input.SourceID)
	if sourceID == "" {
		return nil, errors.NewInvalidInput("source id is required")
	}
	prefix := input.Prefix
	if prefix == "" {
		prefix = "YT-"
	}
	log := logFrom(ctx)

	notebooks, err := client.ListNotebooks(ctx)
	if err != nil {
		return nil, err
	}
	if nb, ok := FindByPrefix(notebooks, prefix+sourceID, input.TieBreak); ok {
		log.DebugContext(ctx, "notebook found", "notebook_id", nb.ID, "title", nb.Title)
		return &ResolveOutput{Notebook: nb}, nil
	}

	title := input.Title
	if title == "" {
		title = prefix + sourceID
	}
	nb, err := client.CreateNotebook(ctx, title)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "notebook created", "notebook_id", nb.ID, "title", nb.Title)

	out := &ResolveOutput{Notebook: nb, Created: true}
	if input.SourceURL == "" {
		return out, nil
	}
	if _, err := client.AddSource(ctx, nb.ID, input.SourceURL, input.SourceTimeout); err != nil {
		log.WarnContext(ctx, "source attach failed", "notebook_id", nb.ID, "err", err)
		out.Warning = "source may still be processing: " + err.Error()
		return out, nil
	}
	out.SourceAttached = true
	return out, nil
}

// FindByPrefix returns the notebook whose title starts with prefix (case-sensitive).
// With several matches, tieBreak "first" keeps listing order; anything else picks
// the most recently created, falling back to listing order when creation times
// are missing or equal.
func FindByPrefix(notebooks []notebooklm.Notebook, prefix, tieBreak string) (notebooklm.Notebook, bool) {
	var (
		best  notebooklm.Notebook
		found bool
	)
	for _, nb := range notebooks {
		if !strings.HasPrefix(nb.Title, prefix) {
			continue
		}
		if !found {
			best, found = nb, true
			if tieBreak == config.TieBreakFirst {
				break
			}
			continue
		}
		if nb.CreatedAt.After(best.CreatedAt) {
			best = nb
		}
	}
	return best, found
}
