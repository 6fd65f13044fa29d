package metagenome

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/metagenome/internal/variant"
)

// synchronizedProject has A: insertion(50,4), deletion(200,10) and
// B: insertion(50,2) on a 1000 bp chromosome.
func synchronizedProject(t *testing.T) *Translator {
	t.Helper()
	p := newTestProject(t, []string{"A", "B"})
	addRecord(t, p, "A", "1", variant.Insertion, 50, 4)
	addRecord(t, p, "A", "1", variant.Deletion, 200, 10)
	addRecord(t, p, "B", "1", variant.Insertion, 50, 2)

	_, err := NewSynchronizer().SynchronizeChromosome(context.Background(), p, "1")
	require.NoError(t, err)
	return NewTranslator(p)
}

func TestReferenceToMeta(t *testing.T) {
	tr := synchronizedProject(t)

	tests := []struct {
		ref  int64
		want Position
	}{
		{10, Position{10, Unanchored}},
		{49, Position{49, Unanchored}},
		{50, Position{54, Resolved}},
		{300, Position{304, Resolved}},
	}
	for _, tt := range tests {
		got, err := tr.ReferenceToMeta("1", tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ref %d", tt.ref)
	}
}

func TestMetaToReference(t *testing.T) {
	tr := synchronizedProject(t)

	tests := []struct {
		meta int64
		want Position
	}{
		{10, Position{10, Unanchored}},
		{50, Position{50, Unresolved}},
		{53, Position{50, Unresolved}},
		{54, Position{50, Resolved}},
		{304, Position{300, Resolved}},
	}
	for _, tt := range tests {
		got, err := tr.MetaToReference("1", tt.meta)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "meta %d", tt.meta)
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	tr := synchronizedProject(t)

	for _, x := range []int64{0, 49, 50, 51, 199, 200, 205, 999} {
		meta, err := tr.ReferenceToMeta("1", x)
		require.NoError(t, err)
		back, err := tr.MetaToReference("1", meta.Pos)
		require.NoError(t, err)
		assert.Equal(t, x, back.Pos, "ref %d", x)
		assert.NotEqual(t, Unresolved, back.Status)
	}
}

func TestGenomeToMeta(t *testing.T) {
	tr := synchronizedProject(t)

	tests := []struct {
		genome string
		native int64
		want   Position
	}{
		{"A", 49, Position{49, Unanchored}},
		{"A", 50, Position{50, Resolved}},
		{"A", 53, Position{53, Resolved}},
		{"A", 54, Position{54, Resolved}},
		{"A", 203, Position{203, Resolved}},
		{"A", 204, Position{214, Resolved}},
		{"B", 51, Position{51, Resolved}},
		{"B", 52, Position{54, Resolved}},
		{"ref", 50, Position{54, Resolved}},
	}
	for _, tt := range tests {
		got, err := tr.GenomeToMeta(tt.genome, "1", tt.native)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s native %d", tt.genome, tt.native)
	}
}

func TestMetaToGenome(t *testing.T) {
	tr := synchronizedProject(t)

	tests := []struct {
		genome string
		meta   int64
		want   Position
	}{
		{"A", 51, Position{51, Resolved}},
		{"A", 205, Position{204, Unresolved}},
		{"A", 214, Position{204, Resolved}},
		{"B", 51, Position{51, Resolved}},
		{"B", 52, Position{52, Unresolved}},
		{"B", 53, Position{52, Unresolved}},
		{"B", 54, Position{52, Resolved}},
	}
	for _, tt := range tests {
		got, err := tr.MetaToGenome(tt.genome, "1", tt.meta)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s meta %d", tt.genome, tt.meta)
	}
}

func TestGenomeRoundTrip(t *testing.T) {
	tr := synchronizedProject(t)

	for _, g := range []string{"A", "B", "ref"} {
		for _, n := range []int64{0, 49, 50, 53, 54, 203, 204, 500} {
			meta, err := tr.GenomeToMeta(g, "1", n)
			require.NoError(t, err)
			back, err := tr.MetaToGenome(g, "1", meta.Pos)
			require.NoError(t, err)
			assert.Equal(t, n, back.Pos, "%s native %d", g, n)
			assert.NotEqual(t, Unresolved, back.Status)
		}
	}
}

func TestGenomeReferenceConversions(t *testing.T) {
	tr := synchronizedProject(t)

	got, err := tr.GenomeToReference("A", "1", 52)
	require.NoError(t, err)
	assert.Equal(t, Position{50, Unresolved}, got)

	got, err = tr.GenomeToReference("A", "1", 203)
	require.NoError(t, err)
	assert.Equal(t, Position{199, Resolved}, got)

	got, err = tr.GenomeToReference("A", "1", 204)
	require.NoError(t, err)
	assert.Equal(t, Position{210, Resolved}, got)

	got, err = tr.ReferenceToGenome("A", "1", 100)
	require.NoError(t, err)
	assert.Equal(t, Position{104, Resolved}, got)

	got, err = tr.ReferenceToGenome("A", "1", 205)
	require.NoError(t, err)
	assert.Equal(t, Position{204, Unresolved}, got)

	got, err = tr.ReferenceToGenome("B", "1", 10)
	require.NoError(t, err)
	assert.Equal(t, Position{10, Unanchored}, got)
}

// A blank synthesized inside a genome's own deletion must not move the
// native anchor of that deletion.
func TestTranslateAcrossBlankInsideDeletion(t *testing.T) {
	p := newTestProject(t, []string{"A", "B"})
	addRecord(t, p, "A", "1", variant.Deletion, 100, 10)
	addRecord(t, p, "B", "1", variant.Insertion, 105, 2)
	_, err := NewSynchronizer().SynchronizeChromosome(context.Background(), p, "1")
	require.NoError(t, err)
	tr := NewTranslator(p)

	n, err := tr.MetaLength("1")
	require.NoError(t, err)
	assert.Equal(t, int64(1002), n)

	toMeta := []struct {
		genome string
		native int64
		want   Position
	}{
		{"A", 95, Position{95, Unanchored}},
		{"A", 99, Position{99, Unanchored}},
		{"A", 100, Position{112, Resolved}},
		{"B", 105, Position{105, Resolved}},
	}
	for _, tt := range toMeta {
		got, err := tr.GenomeToMeta(tt.genome, "1", tt.native)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s native %d", tt.genome, tt.native)
	}

	got, err := tr.GenomeToReference("A", "1", 95)
	require.NoError(t, err)
	assert.Equal(t, int64(95), got.Pos)
	got, err = tr.GenomeToReference("A", "1", 100)
	require.NoError(t, err)
	assert.Equal(t, Position{110, Resolved}, got)

	fromMeta := []struct {
		meta int64
		want Position
	}{
		{103, Position{100, Unresolved}},
		{105, Position{100, Unresolved}},
		{108, Position{100, Unresolved}},
		{112, Position{100, Resolved}},
	}
	for _, tt := range fromMeta {
		got, err := tr.MetaToGenome("A", "1", tt.meta)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "meta %d", tt.meta)
	}

	got, err = tr.ReferenceToGenome("A", "1", 105)
	require.NoError(t, err)
	assert.Equal(t, Position{100, Unresolved}, got)
}

func TestTranslatorReadAccess(t *testing.T) {
	tr := synchronizedProject(t)

	n, err := tr.MetaLength("1")
	require.NoError(t, err)
	assert.Equal(t, int64(1004), n)

	recs, err := tr.Records("A", "1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, variant.Deletion, recs[1].Type)

	recs, err = tr.Records("ref", "1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, variant.Blank, recs[0].Type)
}

func TestTranslatorUnknownNames(t *testing.T) {
	tr := synchronizedProject(t)

	_, err := tr.GenomeToMeta("Z", "1", 5)
	assert.ErrorIs(t, err, ErrUnknownGenome)

	_, err = tr.ReferenceToMeta("9", 5)
	assert.ErrorIs(t, err, ErrUnknownChromosome)

	_, err = tr.MetaLength("9")
	assert.ErrorIs(t, err, ErrUnknownChromosome)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "unanchored", Unanchored.String())
	assert.Equal(t, "unresolved", Unresolved.String())
}
