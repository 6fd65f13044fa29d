// Package store holds the ordered variant records of one genome on one
// chromosome.
//
// A Store is filled once in ascending position order, then synchronized by
// exactly one sweep (see BeginSweep). After that it is read-only and safe
// for concurrent readers.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/inodb/metagenome/internal/variant"
)

var (
	// ErrDuplicatePosition is returned when a genome has two records at the
	// same reference position.
	ErrDuplicatePosition = errors.New("duplicate reference position")
	// ErrUnsorted is returned when records are added out of order, e.g. from
	// several VCF files that were not merged first.
	ErrUnsorted = errors.New("records not in ascending position order")
	// ErrAlreadySynchronized is returned when a synchronized store is
	// modified or swept a second time.
	ErrAlreadySynchronized = errors.New("store already synchronized")
	// ErrSweepInProgress is returned when a second sweep is started on a
	// store before the first one committed or aborted.
	ErrSweepInProgress = errors.New("sweep already in progress")
	// ErrIncompleteSweep is returned when a sweep commits without visiting
	// every record of the store.
	ErrIncompleteSweep = errors.New("sweep did not visit every record")
	// ErrOverlappingDeletion is returned when a record starts inside a
	// deletion already stored for the genome, e.g. a phased 1|0 deletion
	// followed by a 0|1 call within its span.
	ErrOverlappingDeletion = errors.New("record inside an earlier deletion")
)

// Store is the ordered record list of one (genome, chromosome) pair.
type Store struct {
	genome       string
	chrom        string
	records      []*variant.Record
	synchronized bool
	sweeping     bool

	deletedTo int64 // end of the reference span deleted by records added so far

	// Derived once synchronized.
	natives []int64 // native anchor per record, non-decreasing
	spans   []int64 // per record, end of the deleted reference span covering Pos
}

// Span is a record of a synchronized store together with its place in the
// genome's own coordinates.
type Span struct {
	*variant.Record

	// Native is the genome-native position at which the record takes
	// effect: its first inserted base, or the base following it. Unlike
	// NativeStart it never decreases over the store, also for blanks that
	// fall inside one of the genome's deletions.
	Native int64
	// DeletedTo ends the reference span this genome deleted at or before
	// Pos. Reference positions from Pos up to DeletedTo have no native
	// counterpart. DeletedTo <= Pos when nothing is deleted there.
	DeletedTo int64
}

// New creates an empty store.
func New(genome, chrom string) *Store {
	return &Store{genome: genome, chrom: chrom}
}

// Genome returns the genome name.
func (s *Store) Genome() string { return s.genome }

// Chrom returns the chromosome name.
func (s *Store) Chrom() string { return s.chrom }

// Add appends a record. Positions must be strictly ascending.
func (s *Store) Add(r *variant.Record) error {
	if s.synchronized || s.sweeping {
		return fmt.Errorf("add %s:%d to %s: %w", s.chrom, r.Pos, s.genome, ErrAlreadySynchronized)
	}
	if n := len(s.records); n > 0 {
		last := s.records[n-1].Pos
		switch {
		case r.Pos == last:
			return fmt.Errorf("add %s:%d to %s: %w", s.chrom, r.Pos, s.genome, ErrDuplicatePosition)
		case r.Pos < last:
			return fmt.Errorf("add %s:%d to %s after %d: %w", s.chrom, r.Pos, s.genome, last, ErrUnsorted)
		case r.Pos < s.deletedTo:
			return fmt.Errorf("add %s:%d to %s, deleted up to %d: %w", s.chrom, r.Pos, s.genome, s.deletedTo, ErrOverlappingDeletion)
		}
	}
	s.records = append(s.records, r)
	if r.Type == variant.Deletion {
		s.deletedTo = max(s.deletedTo, r.Pos+r.Length)
	}
	return nil
}

// Restore replaces the records of an empty store with an already
// synchronized list, as read back from persistent storage.
func (s *Store) Restore(records []*variant.Record) error {
	if s.synchronized || len(s.records) > 0 {
		return fmt.Errorf("restore %s/%s: %w", s.genome, s.chrom, ErrAlreadySynchronized)
	}
	for i := 1; i < len(records); i++ {
		if records[i].Pos <= records[i-1].Pos {
			return fmt.Errorf("restore %s/%s at %d: %w", s.genome, s.chrom, records[i].Pos, ErrUnsorted)
		}
	}
	s.records = records
	s.synchronized = true
	s.buildLayout()
	return nil
}

// buildLayout derives the native anchors and deleted spans of the
// synchronized records.
func (s *Store) buildLayout() {
	s.natives = make([]int64, len(s.records))
	s.spans = make([]int64, len(s.records))
	var end, deletedTo int64
	for i, r := range s.records {
		// A blank synthesized inside a deletion starts before the native
		// end of that deletion; it takes effect where the deletion does.
		native := max(r.NativeStart(), end)
		s.natives[i] = native
		end = native
		switch r.Type {
		case variant.Insertion:
			end += r.Length
		case variant.Deletion:
			deletedTo = max(deletedTo, r.Pos+r.Length)
		}
		s.spans[i] = deletedTo
	}
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Records returns the records in ascending position order.
// The slice must not be modified.
func (s *Store) Records() []*variant.Record { return s.records }

// Positions returns the reference positions of all records.
func (s *Store) Positions() []int64 {
	out := make([]int64, len(s.records))
	for i, r := range s.records {
		out[i] = r.Pos
	}
	return out
}

// Find returns the record at exactly pos.
func (s *Store) Find(pos int64) (*variant.Record, bool) {
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Pos >= pos
	})
	if i < len(s.records) && s.records[i].Pos == pos {
		return s.records[i], true
	}
	return nil, false
}

// Last returns the last record for which before reports true, given that
// before is monotone (true then false) over the records.
func (s *Store) Last(before func(r *variant.Record) bool) (*variant.Record, bool) {
	i := sort.Search(len(s.records), func(i int) bool {
		return !before(s.records[i])
	})
	if i == 0 {
		return nil, false
	}
	return s.records[i-1], true
}

// SpanAtReference returns the last record at or before reference position
// ref. Only valid on a synchronized store.
func (s *Store) SpanAtReference(ref int64) (Span, bool) {
	return s.span(sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Pos > ref
	}))
}

// SpanAtMeta returns the last record whose meta-genome start is at or
// before meta. Only valid on a synchronized store.
func (s *Store) SpanAtMeta(meta int64) (Span, bool) {
	return s.span(sort.Search(len(s.records), func(i int) bool {
		return s.records[i].MetaStart() > meta
	}))
}

// SpanAtNative returns the last record taking effect at or before the
// genome-native position native. Only valid on a synchronized store.
func (s *Store) SpanAtNative(native int64) (Span, bool) {
	return s.span(sort.Search(len(s.natives), func(i int) bool {
		return s.natives[i] > native
	}))
}

// span returns the record before index i.
func (s *Store) span(i int) (Span, bool) {
	if i == 0 {
		return Span{}, false
	}
	return Span{Record: s.records[i-1], Native: s.natives[i-1], DeletedTo: s.spans[i-1]}, true
}

// Synchronized reports whether a sweep has been committed on the store.
func (s *Store) Synchronized() bool { return s.synchronized }
