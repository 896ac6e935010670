package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

// ArtifactStatus is the set of artifact kinds present in a notebook.
type ArtifactStatus struct {
	Present map[artifact.Kind][]string `json:"present"` // kind -> artifact titles
	// ListError is set when listing failed and the status degraded to empty.
	ListError string `json:"list_error,omitempty"`
}

// Has reports whether at least one artifact of kind k is present.
func (s ArtifactStatus) Has(k artifact.Kind) bool {
	_, ok := s.Present[k]
	return ok
}

// Kinds returns the present kinds in generation order.
func (s ArtifactStatus) Kinds() []artifact.Kind {
	kinds := make([]artifact.Kind, 0, len(s.Present))
	for k := range s.Present {
		kinds = append(kinds, k)
	}
	return artifact.Sorted(kinds)
}

// Missing returns the kinds of requested that are not present, in generation order.
func (s ArtifactStatus) Missing(requested []artifact.Kind) []artifact.Kind {
	var missing []artifact.Kind
	for _, k := range artifact.Sorted(requested) {
		if !s.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Inspect lists the notebook's artifacts with a single call.
// A listing failure yields an empty status rather than an error, so that
// generation is attempted instead of silently skipped.
//
// When language is set, artifacts tagged with a different language do not count;
// untagged artifacts always count. Failed artifacts and unknown types are ignored.
func Inspect(ctx context.Context, client notebooklm.Client, notebookID, language string) ArtifactStatus {
	status := ArtifactStatus{Present: map[artifact.Kind][]string{}}

	artifacts, err := client.ListArtifacts(ctx, notebookID)
	if err != nil {
		logFrom(ctx).WarnContext(ctx, "artifact listing failed, assuming none exist",
			"notebook_id", notebookID, "err", err)
		status.ListError = err.Error()
		return status
	}

	for _, a := range artifacts {
		if a.Kind == "" || a.Failed() || !languageMatches(a.Language, language) {
			continue
		}
		status.Present[a.Kind] = append(status.Present[a.Kind], a.Title)
	}
	return status
}

func languageMatches(tag, want string) bool {
	tag = strings.TrimSpace(tag)
	want = strings.TrimSpace(want)
	if tag == "" || want == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(tag), strings.ToLower(want))
}
