package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordOffsets(t *testing.T) {
	ins := &Record{Type: Insertion, Pos: 50, Length: 2, ExtraOffset: 2}
	ins.ChainFrom(nil)
	assert.Equal(t, int64(0), ins.NextReferenceOffset())
	assert.Equal(t, int64(4), ins.NextMetaGenomeOffset())
	assert.Equal(t, int64(2), ins.NextGenomeOffset())
	assert.Equal(t, int64(50), ins.MetaStart())
	assert.Equal(t, int64(54), ins.MetaEnd())

	del := &Record{Type: Deletion, Pos: 80, Length: 5}
	del.ChainFrom(ins)
	assert.Equal(t, int64(0), del.InitialReferenceOffset)
	assert.Equal(t, int64(4), del.InitialMetaGenomeOffset)
	assert.Equal(t, int64(2), del.InitialGenomeOffset)
	assert.Equal(t, int64(5), del.NextReferenceOffset())
	assert.Equal(t, int64(4), del.NextMetaGenomeOffset())
	assert.Equal(t, int64(82), del.NativeStart())

	blank := NewBlank(120, 3)
	blank.ChainFrom(del)
	assert.Equal(t, int64(5), blank.NextReferenceOffset())
	assert.Equal(t, int64(7), blank.NextMetaGenomeOffset())
	assert.Equal(t, int64(2), blank.NextGenomeOffset())
}

func TestStructuralVariantKeepsAxis(t *testing.T) {
	sv := &Record{Type: StructuralVariant, Pos: 10, Length: 500}
	assert.Equal(t, int64(0), sv.MetaWidth())
	assert.Equal(t, int64(0), sv.NextReferenceOffset())
}

func TestTypeString(t *testing.T) {
	for _, typ := range []Type{Blank, Insertion, Deletion, StructuralVariant, SNP} {
		got, ok := ParseType(typ.String())
		assert.True(t, ok)
		assert.Equal(t, typ, got)
	}
	_, ok := ParseType("breakend")
	assert.False(t, ok)
}

func TestDeletionCarriesGap(t *testing.T) {
	del := &Record{Type: Deletion, Pos: 10, Length: 4, GapOffset: 3}
	assert.Equal(t, int64(3), del.MetaWidth())
	assert.Equal(t, int64(4), del.NextReferenceOffset())
	assert.Equal(t, int64(13), del.MetaEnd())
}
