package notebooklm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/tool"
)

// DefaultBinary is the executable looked up when CLI.Path is empty.
const DefaultBinary = "notebooklm"

// generateCommands maps artifact kinds to `notebooklm generate` subcommands.
var generateCommands = map[artifact.Kind]string{
	artifact.Report:      "report",
	artifact.MindMap:     "mind-map",
	artifact.Slides:      "slide-deck",
	artifact.Infographic: "infographic",
	artifact.Quiz:        "quiz",
	artifact.Flashcards:  "flashcards",
	artifact.Audio:       "audio",
	artifact.Video:       "video",
}

// CLI implements Client on top of the notebooklm command-line tool.
type CLI struct {
	Path        string
	Runner      tool.Runner
	CallTimeout time.Duration
	WaitTimeout time.Duration
}

// NewCLI creates a CLI client running the binary at path.
func NewCLI(path string, callTimeout, waitTimeout time.Duration) *CLI {
	return &CLI{
		Path:        path,
		Runner:      tool.ExecRunner{},
		CallTimeout: callTimeout,
		WaitTimeout: waitTimeout,
	}
}

var _ Client = (*CLI)(nil)

func (c *CLI) run(ctx context.Context, timeout time.Duration, op string, args ...string) ([]byte, error) {
	path := c.Path
	if path == "" {
		path = DefaultBinary
	}
	runner := c.Runner
	if runner == nil {
		runner = tool.ExecRunner{}
	}
	return tool.Invoke(ctx, runner, timeout, op, path, args...)
}

// ListNotebooks implements Client.
func (c *CLI) ListNotebooks(ctx context.Context) ([]Notebook, error) {
	out, err := c.run(ctx, c.CallTimeout, "list notebooks", "list", "--json")
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireNotebook](out, "notebooks", "items")
	if err != nil {
		return nil, errors.NewRemote("list notebooks", "unexpected output", err)
	}
	notebooks := make([]Notebook, 0, len(wire))
	for _, w := range wire {
		notebooks = append(notebooks, w.notebook())
	}
	return notebooks, nil
}

// CreateNotebook implements Client.
func (c *CLI) CreateNotebook(ctx context.Context, title string) (Notebook, error) {
	out, err := c.run(ctx, c.CallTimeout, "create notebook", "create", title, "--json")
	if err != nil {
		return Notebook{}, err
	}
	w, err := decodeObject[wireNotebook](out, "notebook")
	if err != nil {
		return Notebook{}, errors.NewRemote("create notebook", "unexpected output", err)
	}
	if w.ID == "" {
		return Notebook{}, errors.NewRemote("create notebook", "no notebook id in output", nil)
	}
	nb := w.notebook()
	if nb.Title == "" {
		nb.Title = title
	}
	return nb, nil
}

// AddSource implements Client.
func (c *CLI) AddSource(ctx context.Context, notebookID, url string, wait time.Duration) (Source, error) {
	args := []string{"source", "add", url, "-n", notebookID, "--json"}
	timeout := c.CallTimeout
	if wait > 0 {
		args = append(args, "--wait", "--timeout", seconds(wait))
		if timeout > 0 {
			timeout += wait
		}
	}
	out, err := c.run(ctx, timeout, "add source", args...)
	if err != nil {
		return Source{}, err
	}
	w, err := decodeObject[wireSource](out, "source")
	if err != nil {
		// The source was accepted; only the report of it is unreadable.
		return Source{}, nil
	}
	return w.source(), nil
}

// ListArtifacts implements Client.
func (c *CLI) ListArtifacts(ctx context.Context, notebookID string) ([]Artifact, error) {
	out, err := c.run(ctx, c.CallTimeout, "list artifacts", "artifact", "list", "-n", notebookID, "--json")
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireArtifact](out, "artifacts", "items")
	if err != nil {
		return nil, errors.NewRemote("list artifacts", "unexpected output", err)
	}
	artifacts := make([]Artifact, 0, len(wire))
	for _, w := range wire {
		artifacts = append(artifacts, w.artifact())
	}
	return artifacts, nil
}

// Generate implements Client.
func (c *CLI) Generate(ctx context.Context, notebookID string, kind artifact.Kind, language string) (GenerationStatus, error) {
	cmd, ok := generateCommands[kind]
	if !ok {
		return GenerationStatus{}, errors.NewInvalidInput(fmt.Sprintf("unknown artifact kind %q", kind))
	}
	args := []string{"generate", cmd, "-n", notebookID, "--json"}
	if spec, ok := artifact.Lookup(kind); ok && spec.Localized && language != "" {
		args = append(args, "--language", language)
	}

	op := "generate " + string(kind)
	out, err := c.run(ctx, c.CallTimeout, op, args...)
	if err != nil {
		return GenerationStatus{}, err
	}
	w, err := decodeObject[wireStatus](out, "status", "result")
	if err != nil {
		return GenerationStatus{}, errors.NewRemote(op, "unexpected output", err)
	}
	return w.status(), nil
}

// WaitArtifact implements Client.
func (c *CLI) WaitArtifact(ctx context.Context, notebookID, taskID string) (GenerationStatus, error) {
	args := []string{"artifact", "wait", taskID, "-n", notebookID, "--json"}
	if c.WaitTimeout > 0 {
		args = append(args, "--timeout", seconds(c.WaitTimeout))
	}
	out, err := c.run(ctx, c.WaitTimeout, "wait artifact", args...)
	if err != nil {
		return GenerationStatus{}, err
	}
	w, err := decodeObject[wireStatus](out, "status", "result")
	if err != nil {
		return GenerationStatus{}, errors.NewRemote("wait artifact", "unexpected output", err)
	}
	st := w.status()
	if st.TaskID == "" {
		st.TaskID = taskID
	}
	return st, nil
}

// DownloadReport implements Client.
func (c *CLI) DownloadReport(ctx context.Context, notebookID, path string) error {
	_, err := c.run(ctx, c.CallTimeout, "download report", "download", "report", path, "-n", notebookID)
	return err
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d.Round(time.Second) / time.Second))
}
