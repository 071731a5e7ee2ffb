// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoljh/questscholar/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := New()
	s.AppendPaper(types.PaperRecord{
		Title:         "Paper B",
		Authors:       []string{"B. Author", "C. Author"},
		PubYear:       2021,
		Abstract:      "Abstract B",
		URL:           "https://example.org/b",
		Source:        types.SourceOpenAlex,
		CitationCount: 7,
		Venue:         "Journal B",
		PaperID:       "oa_1",
	})
	s.AppendPaper(types.PaperRecord{Title: "Paper A", Abstract: "Abstract A", Venue: "Unknown", Source: types.SourceArxiv})
	_, err := s.IngestEvaluations([]byte(`[
		{"paper_title": "Paper B", "relevance_score": 4.5, "flags": ["strong_empirics"], "recommended_action": "include", "rationale": "solid"}
	]`))
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, s))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)

	// Insertion order survives the round trip.
	require.Len(t, loaded.Papers, 2)
	assert.Equal(t, "Paper B", loaded.Papers[0].Title)
	assert.Equal(t, "Paper A", loaded.Papers[1].Title)
	assert.Equal(t, s.Papers[0], loaded.Papers[0])

	require.Len(t, loaded.Evaluations, 1)
	ev, ok := loaded.Evaluation("paper b")
	require.True(t, ok)
	assert.InDelta(t, 0.4*4.5+0.3*3.0+0.3*3.0, ev.Overall, 1e-9)
	assert.Equal(t, []string{"strong_empirics"}, ev.Tags)
	assert.Equal(t, types.ActionInclude, ev.Action)
}

func TestStoreSaveReplacesPriorState(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := New()
	first.AppendPaper(types.PaperRecord{Title: "Old Paper", Abstract: "x", Venue: "Unknown"})
	require.NoError(t, st.Save(ctx, first))

	require.NoError(t, st.Save(ctx, New()))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Papers)
	assert.Empty(t, loaded.Evaluations)
}

func TestLoadFreshDatabase(t *testing.T) {
	st := openTestStore(t)

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Papers)
	assert.NotNil(t, loaded.Evaluations)
}
