package ops

import (
	"context"
	"strconv"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
	"github.com/hpungsan/ytnb/internal/video"
)

// ViewInput contains parameters for the View operation.
type ViewInput struct {
	Notebook string          // required, notebook id or NotebookLM URL
	Kinds    []artifact.Kind // empty: only report what exists
	GenerationSettings
}

// ViewOutput contains the result of the View operation.
type ViewOutput struct {
	Notebook     notebooklm.Notebook        `json:"notebook"`
	URL          string                     `json:"url"`
	Artifacts    map[artifact.Kind][]string `json:"artifacts"`
	Present      []artifact.Kind            `json:"present"`
	Missing      []artifact.Kind            `json:"missing"` // every kind not present
	AllAvailable bool                       `json:"all_available,omitempty"`
	Summary      *Summary                   `json:"summary,omitempty"` // nil when nothing was requested
}

// View shows which artifacts an existing notebook has and generates the
// requested ones that are missing.
func View(ctx context.Context, env Env, input ViewInput) (*ViewOutput, error) {
	nb, err := FindNotebook(ctx, env.Client, input.Notebook)
	if err != nil {
		return nil, err
	}
	rep := env.Reporter

	status := Inspect(ctx, env.Client, nb.ID, env.language(input.GenerationSettings))
	out := &ViewOutput{
		Notebook:  nb,
		URL:       notebooklm.URL(nb.ID),
		Artifacts: status.Present,
		Present:   status.Kinds(),
		Missing:   status.Missing(artifact.All()),
	}

	rep.Printf("Notebook: %s", nb.Title)
	for _, k := range artifact.All() {
		spec := artifact.MustLookup(k)
		if titles, ok := status.Present[k]; ok {
			rep.Status(MarkOK, spec.DisplayName, pluralize(len(titles), "artifact"))
		} else {
			rep.Status(MarkSkip, spec.DisplayName, "missing")
		}
	}
	if status.ListError != "" {
		rep.Status(MarkWarn, "Artifacts", "listing failed, assuming none exist")
	}

	if len(input.Kinds) == 0 {
		rep.Printf("Notebook: %s", out.URL)
		return out, nil
	}

	out.Summary, out.AllAvailable, err = generateMissing(ctx, env, nb.ID, status.Missing(input.Kinds), input.GenerationSettings)
	if err != nil {
		return nil, err
	}
	printSummary(rep, out.Summary, out.AllAvailable, out.URL)
	return out, nil
}

// FindNotebook looks up an existing notebook by id or NotebookLM URL.
func FindNotebook(ctx context.Context, client notebooklm.Client, ref string) (notebooklm.Notebook, error) {
	id := video.ExtractNotebookID(ref)
	if id == "" {
		return notebooklm.Notebook{}, errors.NewInvalidInput("notebook id or URL is required")
	}
	notebooks, err := client.ListNotebooks(ctx)
	if err != nil {
		return notebooklm.Notebook{}, err
	}
	for _, nb := range notebooks {
		if nb.ID == id {
			return nb, nil
		}
	}
	return notebooklm.Notebook{}, errors.NewNotFound(id)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
