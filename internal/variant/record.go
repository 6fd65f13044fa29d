// Package variant classifies VCF calls into length-changing records that
// shift a genome's coordinate stream.
package variant

// Type identifies the kind of a Record.
type Type int

// Record types. SNP is never stored but is reported by the classifier.
const (
	Blank Type = iota
	Insertion
	Deletion
	StructuralVariant
	SNP
)

// String returns the display name of the type.
func (t Type) String() string {
	switch t {
	case Blank:
		return "blank"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case StructuralVariant:
		return "structural_variant"
	case SNP:
		return "snp"
	}
	return "unknown"
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, bool) {
	for _, t := range []Type{Blank, Insertion, Deletion, StructuralVariant, SNP} {
		if t.String() == s {
			return t, true
		}
	}
	return Blank, false
}

// Record is one classified call for one genome on one chromosome.
//
// Pos is the 0-based reference position at which the variant takes effect:
// inserted bases sit immediately before reference base Pos, deleted bases
// start at Pos.
type Record struct {
	Type           Type
	Pos            int64
	Length         int64
	OnFirstAllele  bool
	OnSecondAllele bool

	// Offsets are filled in by the synchronizer.
	InitialReferenceOffset  int64
	InitialMetaGenomeOffset int64
	InitialGenomeOffset     int64
	ExtraOffset             int64 // padding of a shorter insertion
	GapOffset               int64 // width of another genome's insertion at a deletion or SV
}

// NewBlank returns a placeholder record of the given width.
func NewBlank(pos, length int64) *Record {
	return &Record{Type: Blank, Pos: pos, Length: length}
}

// NextReferenceOffset is the count of reference bases this genome lacks
// once the record has been passed.
func (r *Record) NextReferenceOffset() int64 {
	if r.Type == Deletion {
		return r.InitialReferenceOffset + r.Length
	}
	return r.InitialReferenceOffset
}

// MetaWidth is the number of meta-genome positions opened by the record.
// Deletions and structural variants do not widen the axis themselves; they
// only carry the gap of an insertion other genomes have at the same locus.
func (r *Record) MetaWidth() int64 {
	switch r.Type {
	case Insertion, Blank:
		return r.Length + r.ExtraOffset
	}
	return r.GapOffset
}

// NextMetaGenomeOffset is the meta-genome shift applying to reference
// positions at and after Pos.
func (r *Record) NextMetaGenomeOffset() int64 {
	return r.InitialMetaGenomeOffset + r.MetaWidth()
}

// NextGenomeOffset is the count of bases this genome carries that the
// reference does not, once the record has been passed.
func (r *Record) NextGenomeOffset() int64 {
	if r.Type == Insertion {
		return r.InitialGenomeOffset + r.Length
	}
	return r.InitialGenomeOffset
}

// ChainFrom sets the record's initial offsets from the previous record in
// the same store. A nil prev starts the chain at zero.
func (r *Record) ChainFrom(prev *Record) {
	if prev == nil {
		r.InitialReferenceOffset = 0
		r.InitialMetaGenomeOffset = 0
		r.InitialGenomeOffset = 0
		return
	}
	r.InitialReferenceOffset = prev.NextReferenceOffset()
	r.InitialMetaGenomeOffset = prev.NextMetaGenomeOffset()
	r.InitialGenomeOffset = prev.NextGenomeOffset()
}

// NativeStart returns the genome-native position of reference base Pos
// before this record's own effect is applied.
func (r *Record) NativeStart() int64 {
	return r.Pos - r.InitialReferenceOffset + r.InitialGenomeOffset
}

// MetaStart returns the first meta-genome position opened at Pos.
func (r *Record) MetaStart() int64 {
	return r.Pos + r.InitialMetaGenomeOffset
}

// MetaEnd returns the meta-genome position of reference base Pos.
func (r *Record) MetaEnd() int64 {
	return r.Pos + r.NextMetaGenomeOffset()
}
