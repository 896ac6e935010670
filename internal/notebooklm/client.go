// Package notebooklm is a client for the NotebookLM service, driven through the
// external `notebooklm` command-line tool.
//
// Every operation takes the notebook id explicitly; the client never relies on
// the tool's "current notebook" session state.
package notebooklm

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/ytnb/internal/artifact"
)

// BaseURL is the web address of NotebookLM notebooks.
const BaseURL = "https://notebooklm.google.com/notebook/"

// URL returns the web URL of a notebook.
func URL(notebookID string) string {
	return BaseURL + notebookID
}

// Notebook is a remote notebook.
type Notebook struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Source is a notebook source as returned by the add-source call.
type Source struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// Artifact is a generated artifact as listed by the remote service.
type Artifact struct {
	ID       string        `json:"id"`
	Title    string        `json:"title,omitempty"`
	Kind     artifact.Kind `json:"kind,omitempty"`
	Type     string        `json:"type,omitempty"` // remote type label as received
	Status   string        `json:"status,omitempty"`
	Language string        `json:"language,omitempty"`
}

// Remote status values.
const (
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

// Failed reports whether the artifact's generation failed.
func (a Artifact) Failed() bool {
	return strings.EqualFold(a.Status, StatusFailed)
}

// GenerationStatus is the immediate answer to a generation request, or the
// final state after waiting on it.
type GenerationStatus struct {
	TaskID      string `json:"task_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
	RateLimited bool   `json:"rate_limited,omitempty"`
}

// Failed reports whether the service rejected or failed the generation.
func (s GenerationStatus) Failed() bool {
	return strings.EqualFold(s.Status, StatusFailed) || s.RateLimited
}

// Client is the set of NotebookLM operations ytnb consumes.
type Client interface {
	ListNotebooks(ctx context.Context) ([]Notebook, error)
	CreateNotebook(ctx context.Context, title string) (Notebook, error)
	// AddSource attaches url to the notebook. A positive wait blocks until the
	// source is processed or wait elapses.
	AddSource(ctx context.Context, notebookID, url string, wait time.Duration) (Source, error)
	ListArtifacts(ctx context.Context, notebookID string) ([]Artifact, error)
	// Generate requests an artifact. language is ignored for kinds without localization.
	Generate(ctx context.Context, notebookID string, kind artifact.Kind, language string) (GenerationStatus, error)
	WaitArtifact(ctx context.Context, notebookID, taskID string) (GenerationStatus, error)
	DownloadReport(ctx context.Context, notebookID, path string) error
}
