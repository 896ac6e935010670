package ops

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

// Outcome is the final state of one requested artifact.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeQuota     Outcome = "quota"
	OutcomeFailed    Outcome = "failed"
	OutcomeOmitted   Outcome = "omitted"
	// OutcomeCancelled means the context ended before the call could start.
	OutcomeCancelled Outcome = "cancelled"
)

// MsgSharedQuota is the message attached to artifacts skipped because
// another member of their quota group ran out.
const MsgSharedQuota = "shared quota exhausted"

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	NotebookID string          // required
	Kinds      []artifact.Kind // generated in artifact order regardless of input order
	Language   string          // passed to localized kinds
	Delay      time.Duration   // minimum spacing between call starts; 0 disables
	Wait       bool            // block until each started artifact finishes
	Parallel   bool            // run independent lanes concurrently
}

// Result is the outcome for one artifact kind.
type Result struct {
	Kind    artifact.Kind `json:"kind"`
	Outcome Outcome       `json:"outcome"`
	Message string        `json:"message,omitempty"`
	TaskID  string        `json:"task_id,omitempty"`
}

// Summary aggregates the results of one Generate run.
type Summary struct {
	Attempted int      `json:"attempted"` // calls issued
	Succeeded int      `json:"succeeded"`
	Skipped   int      `json:"skipped"` // omitted or cancelled without a call
	Failed    int      `json:"failed"`  // quota and other failures
	Results   []Result `json:"results"`
}

func (s *Summary) tally() {
	s.Attempted, s.Succeeded, s.Skipped, s.Failed = 0, 0, 0, 0
	for _, r := range s.Results {
		switch r.Outcome {
		case OutcomeCompleted:
			s.Attempted++
			s.Succeeded++
		case OutcomeOmitted, OutcomeCancelled:
			s.Skipped++
		default:
			s.Attempted++
			s.Failed++
		}
	}
}

// Generate requests each kind in artifact order. A failing artifact never stops
// the rest; when a quota group member fails on quota, the group's later members
// are reported as omitted without a call.
//
// In parallel mode each quota group forms one sequential lane and every other
// kind gets its own lane. Call starts stay spaced by Delay across all lanes.
func Generate(ctx context.Context, client notebooklm.Client, rep *Reporter, input GenerateInput) (*Summary, error) {
	if strings.TrimSpace(input.NotebookID) == "" {
		return nil, errors.NewInvalidInput("notebook id is required")
	}
	if input.Delay < 0 {
		return nil, errors.NewInvalidInput("delay must not be negative")
	}

	g := &generator{
		client:   client,
		rep:      rep,
		input:    input,
		kinds:    artifact.Sorted(input.Kinds),
		limiter:  newLimiter(input.Delay),
		notebook: input.NotebookID,
	}
	g.results = make([]Result, len(g.kinds))

	var eg errgroup.Group
	for _, lane := range g.lanes() {
		eg.Go(func() error {
			g.runLane(ctx, lane)
			return nil
		})
	}
	_ = eg.Wait()

	summary := &Summary{Results: g.results}
	summary.tally()
	logFrom(ctx).InfoContext(ctx, "generation finished",
		"notebook_id", input.NotebookID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

type generator struct {
	client   notebooklm.Client
	rep      *Reporter
	input    GenerateInput
	kinds    []artifact.Kind
	limiter  *rate.Limiter
	notebook string
	results  []Result // one slot per kind; each lane writes only its own slots
}

// lanes partitions indexes into g.kinds. Sequential mode has a single lane.
func (g *generator) lanes() [][]int {
	if !g.input.Parallel {
		all := make([]int, len(g.kinds))
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	var lanes [][]int
	groupLane := map[string]int{}
	for i, k := range g.kinds {
		group := artifact.MustLookup(k).QuotaGroup
		if group == "" {
			lanes = append(lanes, []int{i})
			continue
		}
		if li, ok := groupLane[group]; ok {
			lanes[li] = append(lanes[li], i)
			continue
		}
		groupLane[group] = len(lanes)
		lanes = append(lanes, []int{i})
	}
	return lanes
}

func (g *generator) runLane(ctx context.Context, lane []int) {
	exhausted := map[string]bool{}
	for _, i := range lane {
		kind := g.kinds[i]
		spec := artifact.MustLookup(kind)

		if spec.QuotaGroup != "" && exhausted[spec.QuotaGroup] {
			g.results[i] = Result{Kind: kind, Outcome: OutcomeOmitted, Message: MsgSharedQuota}
			g.rep.Omitted(spec.DisplayName, "omitted, "+MsgSharedQuota)
			continue
		}

		if err := g.limiter.Wait(ctx); err != nil {
			g.results[i] = Result{Kind: kind, Outcome: OutcomeCancelled, Message: "cancelled before start"}
			g.rep.Status(MarkSkip, spec.DisplayName, "cancelled before start")
			continue
		}

		res := g.generateOne(ctx, spec)
		if res.Outcome == OutcomeQuota && spec.QuotaGroup != "" {
			exhausted[spec.QuotaGroup] = true
		}
		g.results[i] = res
	}
}

func (g *generator) generateOne(ctx context.Context, spec artifact.Spec) Result {
	log := logFrom(ctx).With("kind", string(spec.Kind), "notebook_id", g.notebook)
	g.rep.Status(MarkStart, spec.DisplayName, "requesting")

	status, err := g.client.Generate(ctx, g.notebook, spec.Kind, g.input.Language)
	if err == nil && !status.Failed() {
		if !g.input.Wait || status.TaskID == "" {
			log.InfoContext(ctx, "generation started", "task_id", status.TaskID)
			g.rep.Status(MarkOK, spec.DisplayName, "generation started")
			return Result{Kind: spec.Kind, Outcome: OutcomeCompleted, Message: "generation started", TaskID: status.TaskID}
		}

		taskID := status.TaskID
		g.rep.Status(MarkStart, spec.DisplayName, "waiting for completion")
		status, err = g.client.WaitArtifact(ctx, g.notebook, taskID)
		if err == nil && !status.Failed() {
			log.InfoContext(ctx, "generation completed", "task_id", taskID)
			g.rep.Status(MarkOK, spec.DisplayName, "completed")
			return Result{Kind: spec.Kind, Outcome: OutcomeCompleted, Message: "completed", TaskID: taskID}
		}
		if status.TaskID == "" {
			status.TaskID = taskID
		}
	}

	class := ClassifyFailure(spec.Kind, status, err)
	detail := failureDetail(status, err)
	log.WarnContext(ctx, "generation failed", "quota", class.IsQuota(), "detail", detail)

	switch class {
	case FailureQuota:
		g.rep.Status(MarkWarn, spec.DisplayName, "daily limit reached")
		return Result{Kind: spec.Kind, Outcome: OutcomeQuota, Message: "daily limit reached", TaskID: status.TaskID}
	case FailureMaybeQuota:
		g.rep.Status(MarkWarn, spec.DisplayName, "failed, possible daily limit")
		return Result{Kind: spec.Kind, Outcome: OutcomeQuota, Message: "possible daily limit", TaskID: status.TaskID}
	default:
		g.rep.Status(MarkFail, spec.DisplayName, detail)
		return Result{Kind: spec.Kind, Outcome: OutcomeFailed, Message: detail, TaskID: status.TaskID}
	}
}

func failureDetail(status notebooklm.GenerationStatus, err error) string {
	if msg := strings.TrimSpace(status.Error); msg != "" {
		return msg
	}
	if err != nil {
		if e, ok := errors.As(err); ok {
			return e.Message
		}
		return err.Error()
	}
	return "generation failed"
}
