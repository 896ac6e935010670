package ops

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

func TestView_QueryOnly(t *testing.T) {
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{{ID: "nb-1", Title: "YT-abc - T"}}
	fc.artifacts["nb-1"] = []notebooklm.Artifact{
		{ID: "a", Kind: artifact.Report, Title: "R1"},
		{ID: "b", Kind: artifact.Report, Title: "R2"},
		{ID: "c", Kind: artifact.Quiz, Title: "Q"},
	}
	var buf bytes.Buffer
	env := Env{Client: fc, Config: testConfig(), Reporter: NewReporter(&buf)}

	out, err := View(context.Background(), env, ViewInput{Notebook: "https://notebooklm.google.com/notebook/nb-1?authuser=0"})
	require.NoError(t, err)
	require.Nil(t, out.Summary)
	require.Equal(t, []artifact.Kind{artifact.Report, artifact.Quiz}, out.Present)
	require.Len(t, out.Missing, 6)
	require.Equal(t, []string{"R1", "R2"}, out.Artifacts[artifact.Report])
	require.Empty(t, fc.generateCalls())
	require.Contains(t, buf.String(), "✓ Report: 2 artifacts")
	require.Contains(t, buf.String(), "✓ Quiz: 1 artifact\n")
	require.Contains(t, buf.String(), "⏭ Video overview: missing")
}

func TestView_GeneratesRequestedMissing(t *testing.T) {
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{{ID: "nb-1", Title: "T"}}
	fc.artifacts["nb-1"] = []notebooklm.Artifact{{ID: "a", Kind: artifact.Report}}
	env := Env{Client: fc, Config: testConfig()}

	out, err := View(context.Background(), env, ViewInput{
		Notebook: "nb-1",
		Kinds:    []artifact.Kind{artifact.Report, artifact.Flashcards},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"flashcards"}, fc.generateCalls())
	require.Equal(t, 1, out.Summary.Succeeded)
	require.False(t, out.AllAvailable)
}

func TestView_AllAvailable(t *testing.T) {
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{{ID: "nb-1", Title: "T"}}
	fc.artifacts["nb-1"] = []notebooklm.Artifact{{ID: "a", Kind: artifact.Report}}
	env := Env{Client: fc, Config: testConfig()}

	out, err := View(context.Background(), env, ViewInput{Notebook: "nb-1", Kinds: []artifact.Kind{artifact.Report}})
	require.NoError(t, err)
	require.True(t, out.AllAvailable)
	require.Empty(t, fc.generateCalls())
}

func TestView_NotFound(t *testing.T) {
	fc := newFakeClient()
	_, err := View(context.Background(), Env{Client: fc}, ViewInput{Notebook: "missing"})
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = View(context.Background(), Env{Client: fc}, ViewInput{Notebook: " "})
	require.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestList_Sorting(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	fc := newFakeClient()
	fc.notebooks = []notebooklm.Notebook{
		{ID: "1", Title: "beta", CreatedAt: day(2), UpdatedAt: day(9)},
		{ID: "2", Title: "Alpha", CreatedAt: day(3), UpdatedAt: day(4)},
		{ID: "3", Title: "YT-x - gamma", CreatedAt: day(1), UpdatedAt: day(5)},
	}

	ids := func(out *ListOutput) []string {
		var got []string
		for _, it := range out.Items {
			got = append(got, it.ID)
		}
		return got
	}

	tests := []struct {
		input ListInput
		want  []string
		sort  string
	}{
		{ListInput{}, []string{"2", "1", "3"}, "title_asc"},
		{ListInput{Sort: "created"}, []string{"3", "1", "2"}, "created_asc"},
		{ListInput{Sort: "created", Desc: true}, []string{"2", "1", "3"}, "created_desc"},
		{ListInput{Sort: "UPDATED", Desc: true}, []string{"1", "3", "2"}, "updated_desc"},
		{ListInput{Prefix: "YT-"}, []string{"3"}, "title_asc"},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			out, err := List(context.Background(), fc, tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids(out))
			require.Equal(t, tt.sort, out.Sort)
			require.Equal(t, len(tt.want), out.Count)
		})
	}
}

func TestList_InvalidSort(t *testing.T) {
	fc := newFakeClient()
	_, err := List(context.Background(), fc, ListInput{Sort: "size"})
	require.True(t, errors.Is(err, errors.ErrInvalidInput))
	require.Empty(t, fc.callLog())
}

func TestList_Empty(t *testing.T) {
	out, err := List(context.Background(), newFakeClient(), ListInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Zero(t, out.Count)
}
