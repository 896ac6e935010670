package ops

import (
	"strings"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

// FailureClass is the best-effort classification of a failed generation.
type FailureClass int

const (
	FailureError FailureClass = iota
	FailureQuota
	// FailureMaybeQuota is an opaque failure on a quota-bearing kind.
	// It is handled exactly like FailureQuota.
	FailureMaybeQuota
)

// IsQuota reports whether the failure counts as quota exhaustion.
func (c FailureClass) IsQuota() bool {
	return c == FailureQuota || c == FailureMaybeQuota
}

var quotaMarkers = []string{
	"quota",
	"rate limit",
	"limit reached",
	"resource_exhausted",
	"resource exhausted",
	"429",
	"daily limit",
	"too many requests",
}

// ClassifyFailure decides whether a failed generation of kind hit a quota.
// status is the remote answer when the call itself succeeded; err is the call
// error otherwise. The remote service does not always expose a structured code,
// so this is a heuristic and can misclassify.
func ClassifyFailure(kind artifact.Kind, status notebooklm.GenerationStatus, err error) FailureClass {
	if status.RateLimited || errors.Is(err, errors.ErrQuotaExhausted) {
		return FailureQuota
	}
	if errors.Is(err, errors.ErrTimeout) || errors.Is(err, errors.ErrToolNotFound) {
		return FailureError
	}

	text := status.Error
	if e, ok := errors.As(err); ok {
		if output, _ := e.Details["output"].(string); output != "" {
			// A JSON status is judged by its fields; its key names must not
			// match a marker.
			if printed, ok := notebooklm.ParseStatus(output); ok {
				if printed.RateLimited {
					return FailureQuota
				}
				output = printed.Error
			}
			text += " " + output
		}
	} else if err != nil {
		text += " " + err.Error()
	}
	if containsQuotaMarker(text) {
		return FailureQuota
	}

	spec, ok := artifact.Lookup(kind)
	if ok && spec.DailyQuota && strings.TrimSpace(text) == "" {
		return FailureMaybeQuota
	}
	return FailureError
}

func containsQuotaMarker(text string) bool {
	text = strings.ToLower(text)
	for _, m := range quotaMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
