package metagenome

import (
	"fmt"

	"github.com/inodb/metagenome/internal/store"
	"github.com/inodb/metagenome/internal/variant"
)

// Status qualifies a translated position.
type Status int

const (
	// Resolved positions were shifted by the offsets of a bracketing record.
	Resolved Status = iota
	// Unanchored positions lie before the first record of the store and
	// map 1:1 with offset 0.
	Unanchored
	// Unresolved positions fall in a gap of the target coordinate system:
	// inserted bases with no reference counterpart, padding, or bases a
	// genome deleted. Pos is then the next position after the gap.
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Unanchored:
		return "unanchored"
	case Unresolved:
		return "unresolved"
	}
	return "unknown"
}

// Position is a translated coordinate.
type Position struct {
	Pos    int64
	Status Status
}

// Translator answers read-only coordinate queries over a synchronized
// project. It is safe for concurrent use.
type Translator struct {
	p *Project
}

// NewTranslator creates a translator over p.
func NewTranslator(p *Project) *Translator {
	return &Translator{p: p}
}

// MetaLength returns the meta-genome length of a chromosome.
func (t *Translator) MetaLength(chrom string) (int64, error) {
	return t.p.MetaLength(chrom)
}

// Records returns the synchronized records of a genome on a chromosome.
func (t *Translator) Records(genome, chrom string) ([]*variant.Record, error) {
	s, err := t.store(genome, chrom)
	if err != nil {
		return nil, err
	}
	return s.Records(), nil
}

// ReferenceToMeta converts a reference position to the meta-genome.
func (t *Translator) ReferenceToMeta(chrom string, ref int64) (Position, error) {
	s, err := t.store(t.p.Reference(), chrom)
	if err != nil {
		return Position{}, err
	}
	r, ok := s.SpanAtReference(ref)
	if !ok {
		return Position{Pos: ref, Status: Unanchored}, nil
	}
	return Position{Pos: ref + r.NextMetaGenomeOffset(), Status: Resolved}, nil
}

// MetaToReference converts a meta-genome position to the reference.
func (t *Translator) MetaToReference(chrom string, meta int64) (Position, error) {
	return t.MetaToGenome(t.p.Reference(), chrom, meta)
}

// GenomeToMeta converts a genome-native position to the meta-genome.
func (t *Translator) GenomeToMeta(genome, chrom string, native int64) (Position, error) {
	s, err := t.store(genome, chrom)
	if err != nil {
		return Position{}, err
	}
	r, ok := s.SpanAtNative(native)
	if !ok {
		return Position{Pos: native, Status: Unanchored}, nil
	}
	if k := native - r.Native; r.Type == variant.Insertion && k < r.Length {
		return Position{Pos: r.MetaStart() + k, Status: Resolved}, nil
	}
	ref := native + r.NextReferenceOffset() - r.NextGenomeOffset()
	return Position{Pos: ref + r.NextMetaGenomeOffset(), Status: Resolved}, nil
}

// MetaToGenome converts a meta-genome position to a genome-native position.
func (t *Translator) MetaToGenome(genome, chrom string, meta int64) (Position, error) {
	s, err := t.store(genome, chrom)
	if err != nil {
		return Position{}, err
	}
	r, ok := s.SpanAtMeta(meta)
	if !ok {
		return Position{Pos: meta, Status: Unanchored}, nil
	}
	if meta < r.MetaEnd() {
		if k := meta - r.MetaStart(); r.Type == variant.Insertion {
			if k < r.Length {
				return Position{Pos: r.Native + k, Status: Resolved}, nil
			}
			return Position{Pos: r.Native + r.Length, Status: Unresolved}, nil
		}
		return Position{Pos: r.Native, Status: Unresolved}, nil
	}
	ref := meta - r.NextMetaGenomeOffset()
	if ref < r.DeletedTo {
		// The next native base is the first one after the deletion.
		return Position{Pos: r.DeletedTo - r.NextReferenceOffset() + r.NextGenomeOffset(), Status: Unresolved}, nil
	}
	return Position{Pos: ref - r.NextReferenceOffset() + r.NextGenomeOffset(), Status: Resolved}, nil
}

// GenomeToReference converts a genome-native position to the reference.
// Bases inside the genome's own insertions are Unresolved.
func (t *Translator) GenomeToReference(genome, chrom string, native int64) (Position, error) {
	s, err := t.store(genome, chrom)
	if err != nil {
		return Position{}, err
	}
	r, ok := s.SpanAtNative(native)
	if !ok {
		return Position{Pos: native, Status: Unanchored}, nil
	}
	if r.Type == variant.Insertion && native-r.Native < r.Length {
		return Position{Pos: r.Pos, Status: Unresolved}, nil
	}
	return Position{Pos: native + r.NextReferenceOffset() - r.NextGenomeOffset(), Status: Resolved}, nil
}

// ReferenceToGenome converts a reference position to a genome-native
// position. Bases the genome deleted are Unresolved.
func (t *Translator) ReferenceToGenome(genome, chrom string, ref int64) (Position, error) {
	meta, err := t.ReferenceToMeta(chrom, ref)
	if err != nil {
		return Position{}, err
	}
	return t.MetaToGenome(genome, chrom, meta.Pos)
}

func (t *Translator) store(genome, chrom string) (*store.Store, error) {
	s, err := t.p.Store(genome, chrom)
	if err != nil {
		return nil, err
	}
	if !t.p.Synchronized(chrom) {
		return nil, fmt.Errorf("%w: %s", ErrIncomplete, chrom)
	}
	return s, nil
}
