package ops

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
	"github.com/hpungsan/ytnb/internal/video"
)

// MsgAllAvailable is reported when nothing requested is missing.
const MsgAllAvailable = "all requested artifacts already available"

// GenerationSettings are the knobs shared by operations that generate artifacts.
// Zero values fall back to the configuration.
type GenerationSettings struct {
	Language string
	Delay    *time.Duration
	Wait     bool
	Parallel bool
}

func (e Env) generateInput(notebookID string, kinds []artifact.Kind, s GenerationSettings) GenerateInput {
	cfg := e.config()
	in := GenerateInput{
		NotebookID: notebookID,
		Kinds:      kinds,
		Language:   e.language(s),
		Delay:      cfg.Delay(),
		Wait:       s.Wait,
		Parallel:   s.Parallel || cfg.Parallel,
	}
	if s.Delay != nil {
		in.Delay = *s.Delay
	}
	return in
}

func (e Env) language(s GenerationSettings) string {
	if s.Language != "" {
		return s.Language
	}
	return e.config().Language
}

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	URL   string          // required, a YouTube video URL
	Kinds []artifact.Kind // empty: artifact.DefaultKinds()
	GenerationSettings
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	RunID          string              `json:"run_id"`
	SourceID       string              `json:"source_id"`
	Notebook       notebooklm.Notebook `json:"notebook"`
	URL            string              `json:"url"`
	Created        bool                `json:"created"`
	SourceAttached bool                `json:"source_attached"`
	Metadata       video.Metadata      `json:"metadata"`
	Requested      []artifact.Kind     `json:"requested"`
	Present        []artifact.Kind     `json:"present"`
	Missing        []artifact.Kind     `json:"missing"`
	AllAvailable   bool                `json:"all_available"`
	Summary        *Summary            `json:"summary"`
	Suggestions    []string            `json:"suggestions,omitempty"` // flags for kinds neither present nor requested
	Warnings       []string            `json:"warnings,omitempty"`
}

// Import runs the whole video workflow: resolve or create the notebook for the
// video, find which requested artifacts are missing and generate them.
// Only an unusable URL or a failure to resolve the notebook is an error;
// everything after that is reported per artifact.
func Import(ctx context.Context, env Env, input ImportInput) (*ImportOutput, error) {
	id := video.ExtractID(input.URL)
	if id == "" {
		return nil, errors.NewInvalidInput(fmt.Sprintf("not a recognized YouTube video URL: %q", input.URL))
	}
	url := strings.TrimSpace(input.URL)
	cfg := env.config()
	rep := env.Reporter

	runID := NewRunID()
	ctx = WithLogger(ctx, logFrom(ctx).With("run_id", runID))
	log := logFrom(ctx)
	log.InfoContext(ctx, "import started", "source_id", id)

	out := &ImportOutput{RunID: runID, SourceID: id}

	var ok bool
	out.Metadata, ok = fetchMetadata(ctx, env.Fetcher, url, id)
	if !ok {
		out.Warnings = append(out.Warnings, "video metadata unavailable, placeholders used")
		rep.Status(MarkWarn, "Metadata", "unavailable, using placeholders")
	}
	rep.Printf("Video: %s (%s)", out.Metadata.Title, id)

	res, err := Resolve(ctx, env.Client, ResolveInput{
		SourceID:      id,
		Prefix:        cfg.NotebookPrefix,
		Title:         video.NotebookTitle(cfg.NotebookPrefix, out.Metadata),
		SourceURL:     url,
		SourceTimeout: cfg.SourceTimeout(),
		TieBreak:      cfg.TieBreak,
	})
	if err != nil {
		return nil, err
	}
	out.Notebook = res.Notebook
	out.URL = notebooklm.URL(res.Notebook.ID)
	out.Created = res.Created
	out.SourceAttached = res.SourceAttached
	if res.Created {
		rep.Status(MarkOK, "Notebook", "created "+res.Notebook.Title)
	} else {
		rep.Status(MarkOK, "Notebook", "found "+res.Notebook.Title)
	}
	if res.Warning != "" {
		out.Warnings = append(out.Warnings, res.Warning)
		rep.Status(MarkWarn, "Source", res.Warning)
	}

	out.Requested = artifact.Sorted(input.Kinds)
	if len(out.Requested) == 0 {
		out.Requested = artifact.DefaultKinds()
	}

	status := ArtifactStatus{Present: map[artifact.Kind][]string{}}
	if !res.Created {
		status = Inspect(ctx, env.Client, res.Notebook.ID, env.language(input.GenerationSettings))
		if status.ListError != "" {
			out.Warnings = append(out.Warnings, "artifact listing failed, assuming none exist")
			rep.Status(MarkWarn, "Artifacts", "listing failed, assuming none exist")
		}
	}
	out.Present = status.Kinds()
	out.Missing = status.Missing(out.Requested)
	out.Suggestions = suggestions(out.Requested, status)

	out.Summary, out.AllAvailable, err = generateMissing(ctx, env, res.Notebook.ID, out.Missing, input.GenerationSettings)
	if err != nil {
		return nil, err
	}
	printSummary(rep, out.Summary, out.AllAvailable, out.URL)
	if len(out.Suggestions) > 0 {
		rep.Printf("Also available: %s", strings.Join(out.Suggestions, " "))
	}
	return out, nil
}

// generateMissing generates missing, or reports MsgAllAvailable without any call when it is empty.
func generateMissing(ctx context.Context, env Env, notebookID string, missing []artifact.Kind, s GenerationSettings) (*Summary, bool, error) {
	if len(missing) == 0 {
		return &Summary{Results: []Result{}}, true, nil
	}
	env.Reporter.Printf("Generating: %s", strings.Join(artifact.Names(missing), ", "))
	summary, err := Generate(ctx, env.Client, env.Reporter, env.generateInput(notebookID, missing, s))
	if err != nil {
		return nil, false, err
	}
	return summary, false, nil
}

// fetchMetadata degrades to placeholders; ok is false when it had to.
func fetchMetadata(ctx context.Context, fetcher video.Fetcher, url, id string) (video.Metadata, bool) {
	if fetcher == nil {
		return video.Placeholder(id), false
	}
	m, err := fetcher.Fetch(ctx, url)
	if err != nil {
		logFrom(ctx).WarnContext(ctx, "metadata unavailable", "source_id", id, "err", err)
		return video.Placeholder(id), false
	}
	m.ID = id
	return m, true
}

func suggestions(requested []artifact.Kind, status ArtifactStatus) []string {
	var flags []string
	for _, k := range artifact.All() {
		if status.Has(k) || slices.Contains(requested, k) {
			continue
		}
		flags = append(flags, "--"+string(k))
	}
	return flags
}

func printSummary(rep *Reporter, s *Summary, allAvailable bool, url string) {
	if allAvailable {
		rep.Status(MarkOK, "Artifacts", MsgAllAvailable)
	} else if s != nil {
		rep.Printf("Summary: %d attempted, %d succeeded, %d skipped, %d failed",
			s.Attempted, s.Succeeded, s.Skipped, s.Failed)
	}
	rep.Printf("Notebook: %s", url)
}
