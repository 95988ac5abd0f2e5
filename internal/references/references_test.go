// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package references

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-drafter/internal/citation"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// fixedIDs returns an id generator yielding ref-1, ref-2, ...
func fixedIDs() func() string {
	n := 0
	return func() string {
		n++
		return "ref-" + strconv.Itoa(n)
	}
}

func std(id, title, body string) types.TextBlock {
	return types.TextBlock{ID: id, Title: title, Kind: types.KindStandard, Body: body}
}

func TestSyncCreatesReferencesBlock(t *testing.T) {
	s := New(WithIDGenerator(fixedIDs()))
	blocks := []types.TextBlock{
		std("s1", "Intro", "Foo [CITE: prior survey] bar."),
		std("s2", "Methods", "Baz [CITE: dataset source]."),
	}

	res := s.Sync(blocks)

	require.Equal(t, ActionCreated, res.Action)
	require.Len(t, res.Blocks, 3)
	refs := res.Blocks[2]
	assert.Equal(t, "ref-1", refs.ID)
	assert.Equal(t, "References", refs.Title)
	assert.Equal(t, types.KindReferences, refs.Kind)
	assert.Equal(t, "[1] prior survey\n[2] dataset source", refs.Body)
	assert.Equal(t, "ref-1", res.BlockID)
	assert.Equal(t, HasReferencesBlock, StateOf(res.Blocks))

	// The input collection is untouched.
	assert.Len(t, blocks, 2)
}

func TestSyncSingleMarker(t *testing.T) {
	s := New(WithIDGenerator(fixedIDs()))
	res := s.Sync([]types.TextBlock{std("a", "Intro", "x [CITE: only reason] y")})

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, "[1] only reason", res.Blocks[1].Body)
}

func TestSyncNoMarkersNoBlock(t *testing.T) {
	s := New()
	blocks := []types.TextBlock{std("a", "Intro", "no citations"), std("b", "Methods", "")}

	res := s.Sync(blocks)

	assert.Equal(t, ActionNone, res.Action)
	assert.Len(t, res.Blocks, 2)
	assert.Equal(t, NoReferencesBlock, StateOf(res.Blocks))
	assert.Empty(t, res.BlockID)
}

func TestSyncEmptyCollection(t *testing.T) {
	res := New().Sync(nil)
	assert.Equal(t, ActionNone, res.Action)
	assert.Empty(t, res.Blocks)
}

func TestSyncUpdatesExistingBlock(t *testing.T) {
	s := New(WithIDGenerator(fixedIDs()))
	blocks := []types.TextBlock{
		std("s1", "Intro", "Foo [CITE: prior survey]."),
		{ID: "refs", Title: "References", Kind: types.KindReferences, Body: "[1] stale entry"},
		std("s2", "Methods", "Baz [CITE: dataset source] and [CITE: prior survey]."),
	}

	res := s.Sync(blocks)

	require.Equal(t, ActionUpdated, res.Action)
	require.Len(t, res.Blocks, 3)
	assert.Equal(t, "refs", res.BlockID)
	assert.Equal(t, "[1] prior survey\n[2] dataset source", res.Blocks[1].Body)

	// Other blocks keep their ids, titles and bodies.
	for _, i := range []int{0, 2} {
		assert.Equal(t, blocks[i], res.Blocks[i])
	}
	// Input untouched.
	assert.Equal(t, "[1] stale entry", blocks[1].Body)
}

func TestSyncAppendsNewMarkerAtNextIndex(t *testing.T) {
	s := New(WithIDGenerator(fixedIDs()))
	first := s.Sync([]types.TextBlock{std("a", "Intro", "[CITE: x]")})
	require.Equal(t, ActionCreated, first.Action)

	blocks := first.Blocks
	blocks = append(blocks, std("b", "Discussion", "[CITE: y]"))

	second := s.Sync(blocks)
	require.Equal(t, ActionUpdated, second.Action)
	assert.Len(t, second.Blocks, 3)

	idx, ok := Find(second.Blocks)
	require.True(t, ok)
	assert.Equal(t, "[1] x\n[2] y", second.Blocks[idx].Body)
	assert.Equal(t, "ref-1", second.Blocks[idx].ID)
}

func TestSyncIdempotent(t *testing.T) {
	s := New(WithIDGenerator(fixedIDs()))
	blocks := []types.TextBlock{std("a", "Intro", "[CITE: x] [CITE: y]")}

	first := s.Sync(blocks)
	second := s.Sync(first.Blocks)
	third := s.Sync(second.Blocks)

	assert.Equal(t, ActionCreated, first.Action)
	assert.Equal(t, ActionNone, second.Action)
	assert.Equal(t, ActionNone, third.Action)
	assert.Equal(t, first.Blocks, second.Blocks)
	assert.Equal(t, second.Blocks, third.Blocks)
}

func TestSyncStaleBlockKeptByDefault(t *testing.T) {
	s := New()
	blocks := []types.TextBlock{
		std("a", "Intro", "all markers removed"),
		{ID: "refs", Title: "References", Kind: types.KindReferences, Body: "[1] old"},
	}

	res := s.Sync(blocks)

	assert.Equal(t, ActionNone, res.Action)
	require.Len(t, res.Blocks, 2)
	assert.Equal(t, "[1] old", res.Blocks[1].Body)
	assert.Equal(t, "refs", res.BlockID)
}

func TestSyncStalePolicies(t *testing.T) {
	blocks := []types.TextBlock{
		std("a", "Intro", "nothing cited"),
		{ID: "refs", Title: "References", Kind: types.KindReferences, Body: "[1] old"},
	}

	t.Run("clear", func(t *testing.T) {
		s := New(WithStalePolicy(types.StaleClear))
		res := s.Sync(blocks)
		assert.Equal(t, ActionCleared, res.Action)
		require.Len(t, res.Blocks, 2)
		assert.Equal(t, citation.Placeholder, res.Blocks[1].Body)

		again := s.Sync(res.Blocks)
		assert.Equal(t, ActionNone, again.Action)
	})

	t.Run("remove", func(t *testing.T) {
		s := New(WithStalePolicy(types.StaleRemove))
		res := s.Sync(blocks)
		assert.Equal(t, ActionRemoved, res.Action)
		assert.Equal(t, "refs", res.BlockID)
		require.Len(t, res.Blocks, 1)
		assert.Equal(t, "a", res.Blocks[0].ID)
		assert.Len(t, blocks, 2)

		again := s.Sync(res.Blocks)
		assert.Equal(t, ActionNone, again.Action)
	})

	t.Run("empty policy keeps default", func(t *testing.T) {
		s := New(WithStalePolicy(""))
		assert.Equal(t, ActionNone, s.Sync(blocks).Action)
	})
}

func TestSyncIgnoresMarkersInsideReferencesBlock(t *testing.T) {
	s := New()
	blocks := []types.TextBlock{
		std("a", "Intro", "[CITE: x]"),
		{ID: "refs", Title: "References", Kind: types.KindReferences, Body: "[CITE: injected]"},
	}

	res := s.Sync(blocks)
	assert.Equal(t, "[1] x", res.Blocks[1].Body)
}

func TestSyncMultipleReferencesBlocksFirstWins(t *testing.T) {
	s := New()
	blocks := []types.TextBlock{
		std("a", "Intro", "[CITE: x]"),
		{ID: "r1", Title: "References", Kind: types.KindReferences, Body: "old one"},
		{ID: "r2", Title: "More References", Kind: types.KindReferences, Body: "old two"},
	}

	res := s.Sync(blocks)

	require.Len(t, res.Blocks, 3)
	assert.Equal(t, "r1", res.BlockID)
	assert.Equal(t, "[1] x", res.Blocks[1].Body)
	assert.Equal(t, "old two", res.Blocks[2].Body)
}

func TestIsReferencesBlock(t *testing.T) {
	tests := []struct {
		name  string
		block types.TextBlock
		want  bool
	}{
		{"explicit kind", types.TextBlock{Title: "Bibliography", Kind: types.KindReferences}, true},
		{"standard kind with references title", types.TextBlock{Title: "References and Notes", Kind: types.KindStandard}, false},
		{"legacy title match", types.TextBlock{Title: "REFERENCES"}, true},
		{"legacy substring match", types.TextBlock{Title: "Cross-referenced work"}, true},
		{"legacy unrelated", types.TextBlock{Title: "Introduction"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReferencesBlock(tt.block))
		})
	}
}

func TestSyncLegacyBlockUpdated(t *testing.T) {
	s := New()
	blocks := []types.TextBlock{
		{ID: "a", Title: "Intro", Body: "[CITE: x]"},
		{ID: "legacy", Title: "references", Body: ""},
	}

	res := s.Sync(blocks)
	assert.Equal(t, ActionUpdated, res.Action)
	assert.Equal(t, "legacy", res.BlockID)
	assert.Equal(t, "[1] x", res.Blocks[1].Body)
}

func TestWithTitle(t *testing.T) {
	s := New(WithTitle("Bibliography"), WithIDGenerator(fixedIDs()))
	res := s.Sync([]types.TextBlock{std("a", "Intro", "[CITE: x]")})
	require.Equal(t, ActionCreated, res.Action)
	assert.Equal(t, "Bibliography", res.Blocks[1].Title)
}

func TestDefaultIDGenerator(t *testing.T) {
	res := New().Sync([]types.TextBlock{std("a", "Intro", "[CITE: x]")})
	require.Len(t, res.Blocks, 2)
	assert.Contains(t, res.Blocks[1].ID, "section-references-")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "no-references-block", NoReferencesBlock.String())
	assert.Equal(t, "has-references-block", HasReferencesBlock.String())
}
