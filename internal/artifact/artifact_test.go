package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAll_Order(t *testing.T) {
	require.Equal(t,
		[]Kind{Report, MindMap, Slides, Infographic, Quiz, Flashcards, Audio, Video},
		All())
}

func TestDefaultKinds(t *testing.T) {
	require.Equal(t, []Kind{Report, MindMap}, DefaultKinds())
}

func TestSharedQuotaPair(t *testing.T) {
	slides := MustLookup(Slides)
	info := MustLookup(Infographic)
	require.NotEmpty(t, slides.QuotaGroup)
	require.Equal(t, slides.QuotaGroup, info.QuotaGroup)

	for _, k := range All() {
		if k == Slides || k == Infographic {
			continue
		}
		require.Empty(t, MustLookup(k).QuotaGroup, "kind %s", k)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"report", Report, true},
		{"  Slides ", Slides, true},
		{"slide_deck", Slides, true},
		{"SLIDE_DECK", Slides, true},
		{"mind_map", MindMap, true},
		{"mind-map", MindMap, true},
		{"ARTIFACT_TYPE_AUDIO", Audio, true},
		{"audio_overview", Audio, true},
		{"flashcards", Flashcards, true},
		{"study_guide", Report, true},
		{"podcast", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSorted(t *testing.T) {
	got := Sorted([]Kind{Video, Audio, Report, Slides, Audio, Kind("bogus"), Infographic})
	require.Equal(t, []Kind{Report, Slides, Infographic, Audio, Video}, got)
}

func TestMustLookup_PanicsOnUnknown(t *testing.T) {
	require.Panics(t, func() { MustLookup(Kind("nope")) })
}
