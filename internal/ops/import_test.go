package ops

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
	"github.com/hpungsan/ytnb/internal/video"
)

func rickRoll() video.Metadata {
	return video.Metadata{
		ID:         "dQw4w9WgXcQ",
		Title:      "Never Gonna Give You Up",
		Channel:    "Rick Astley",
		UploadDate: video.FormatUploadDate("20091025"),
	}
}

func TestImport_NewNotebook(t *testing.T) {
	fc := newFakeClient()
	var buf bytes.Buffer
	env := Env{Client: fc, Fetcher: stubFetcher{meta: rickRoll()}, Config: testConfig(), Reporter: NewReporter(&buf)}

	out, err := Import(context.Background(), env, ImportInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)

	title := "YT-dQw4w9WgXcQ - Never Gonna Give You Up - 2009-10-25 - Rick Astley"
	require.Equal(t, []string{
		"list",
		"create " + title,
		"source nb-1 https://youtu.be/dQw4w9WgXcQ",
		"generate report",
		"generate mind-map",
	}, fc.callLog())

	require.True(t, out.Created)
	require.True(t, out.SourceAttached)
	require.Equal(t, "dQw4w9WgXcQ", out.SourceID)
	require.Equal(t, "https://notebooklm.google.com/notebook/nb-1", out.URL)
	require.Equal(t, artifact.DefaultKinds(), out.Requested)
	require.Equal(t, 2, out.Summary.Succeeded)
	require.False(t, out.AllAvailable)
	require.Len(t, out.RunID, 26)
	require.Equal(t, []string{"--slides", "--infographic", "--quiz", "--flashcards", "--audio", "--video"}, out.Suggestions)
	require.Contains(t, buf.String(), "Summary: 2 attempted, 2 succeeded, 0 skipped, 0 failed")
}

func TestImport_AllAvailable(t *testing.T) {
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{{ID: "nb-x", Title: "YT-dQw4w9WgXcQ - Never Gonna Give You Up - 2009-10-25 - Rick Astley"}}
	fc.artifacts["nb-x"] = []notebooklm.Artifact{
		{ID: "a1", Kind: artifact.Report, Title: "Informe"},
		{ID: "a2", Kind: artifact.MindMap, Title: "Mapa"},
	}
	var buf bytes.Buffer
	env := Env{Client: fc, Fetcher: stubFetcher{meta: rickRoll()}, Config: testConfig(), Reporter: NewReporter(&buf)}

	out, err := Import(context.Background(), env, ImportInput{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.NoError(t, err)

	require.Empty(t, fc.generateCalls())
	require.Equal(t, []string{"list", "artifacts nb-x"}, fc.callLog())
	require.True(t, out.AllAvailable)
	require.False(t, out.Created)
	require.Zero(t, out.Summary.Attempted)
	require.Contains(t, buf.String(), MsgAllAvailable)
}

func TestImport_ExistingNotebookGeneratesOnlyMissing(t *testing.T) {
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{{ID: "nb-x", Title: "YT-dQw4w9WgXcQ - whatever"}}
	fc.artifacts["nb-x"] = []notebooklm.Artifact{{ID: "a1", Kind: artifact.Report}}
	env := Env{Client: fc, Fetcher: stubFetcher{meta: rickRoll()}, Config: testConfig()}

	out, err := Import(context.Background(), env, ImportInput{
		URL:   "https://youtu.be/dQw4w9WgXcQ",
		Kinds: []artifact.Kind{artifact.Audio, artifact.Report, artifact.Slides},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"slides", "audio"}, fc.generateCalls())
	require.Equal(t, []artifact.Kind{artifact.Slides, artifact.Audio}, out.Missing)
	require.Equal(t, []artifact.Kind{artifact.Report}, out.Present)
}

func TestImport_ListingFailureGeneratesEverything(t *testing.T) {
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{{ID: "nb-x", Title: "YT-dQw4w9WgXcQ - whatever"}}
	fc.artifacts["nb-x"] = []notebooklm.Artifact{{ID: "a1", Kind: artifact.Report}}
	fc.artifactsErr = errors.NewTimeout("list artifacts", nil)
	env := Env{Client: fc, Fetcher: stubFetcher{meta: rickRoll()}, Config: testConfig()}

	out, err := Import(context.Background(), env, ImportInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	require.Equal(t, []string{"report", "mind-map"}, fc.generateCalls())
	require.Contains(t, out.Warnings, "artifact listing failed, assuming none exist")
}

func TestImport_MetadataFailureUsesPlaceholders(t *testing.T) {
	fc := newFakeClient()
	env := Env{Client: fc, Fetcher: stubFetcher{err: fmt.Errorf("yt-dlp exploded")}, Config: testConfig()}

	out, err := Import(context.Background(), env, ImportInput{URL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	require.Equal(t, "YT-abc123 - Sin título - fecha-desconocida - Canal desconocido", out.Notebook.Title)
	require.Contains(t, out.Warnings, "video metadata unavailable, placeholders used")
}

func TestImport_SourceFailureStillGenerates(t *testing.T) {
	fc := newFakeClient()
	fc.sourceErr = errors.NewRemote("add source", "still processing", nil)
	env := Env{Client: fc, Fetcher: stubFetcher{meta: rickRoll()}, Config: testConfig()}

	out, err := Import(context.Background(), env, ImportInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	require.False(t, out.SourceAttached)
	require.Len(t, out.Warnings, 1)
	require.Equal(t, []string{"report", "mind-map"}, fc.generateCalls())
}

func TestImport_InvalidURL(t *testing.T) {
	fc := newFakeClient()
	env := Env{Client: fc, Config: testConfig()}

	_, err := Import(context.Background(), env, ImportInput{URL: "https://vimeo.com/1"})
	require.True(t, errors.Is(err, errors.ErrInvalidInput))
	require.Empty(t, fc.callLog())
}

func TestImport_CreateFailureIsFatal(t *testing.T) {
	fc := newFakeClient()
	fc.createErr = errors.NewRemote("create notebook", "not authenticated", nil)
	env := Env{Client: fc, Fetcher: stubFetcher{meta: rickRoll()}, Config: testConfig()}

	_, err := Import(context.Background(), env, ImportInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.True(t, errors.Is(err, errors.ErrRemote))
	require.Empty(t, fc.generateCalls())
}
