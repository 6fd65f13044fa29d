package metagenome

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/metagenome/internal/store"
	"github.com/inodb/metagenome/internal/variant"
)

// Summary describes one completed chromosome sweep.
type Summary struct {
	Chrom         string
	Positions     int   // distinct reference positions visited
	InsertionLoci int   // positions where at least one genome inserts
	Blanks        int   // synthesized blank records
	Padded        int   // insertions widened to the locus maximum
	Gapped        int   // deletions and SVs sharing a locus with an insertion
	MetaLength    int64 // reference length plus every locus maximum
}

// Synchronizer computes the chained offsets of every store in a project
// and the meta-genome length of each chromosome.
type Synchronizer struct {
	logger *zap.Logger
}

// NewSynchronizer creates a synchronizer that logs nothing.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{logger: zap.NewNop()}
}

// SetLogger sets the logger for per-chromosome summaries.
func (s *Synchronizer) SetLogger(l *zap.Logger) {
	s.logger = l
}

// SynchronizeChromosome sweeps one chromosome. Each store of the
// chromosome is swept exactly once; a second call fails with an
// *InvariantError. If ctx is cancelled between two positions the sweep
// is dropped, the stores are left unsynchronized, and the returned error
// wraps ErrIncomplete.
func (s *Synchronizer) SynchronizeChromosome(ctx context.Context, p *Project, chrom string) (Summary, error) {
	c, ok := p.Chromosome(chrom)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrUnknownChromosome, chrom)
	}
	if err := p.claim(chrom); err != nil {
		return Summary{}, err
	}

	sum, err := s.sweep(ctx, p, c)
	if err != nil {
		p.release(chrom)
		return Summary{}, err
	}
	p.finish(chrom, sum.MetaLength)

	s.logger.Info("synchronized chromosome",
		zap.String("chrom", chrom),
		zap.Int("positions", sum.Positions),
		zap.Int("insertion_loci", sum.InsertionLoci),
		zap.Int("blanks", sum.Blanks),
		zap.Int("padded", sum.Padded),
		zap.Int("gapped", sum.Gapped),
		zap.Int64("meta_length", sum.MetaLength))
	return sum, nil
}

func (s *Synchronizer) sweep(ctx context.Context, p *Project, c Chromosome) (Summary, error) {
	genomes := p.AllGenomes()
	stores := make([]*store.Store, len(genomes))
	cursors := make([]*store.Cursor, 0, len(genomes))
	abort := func() {
		for _, cur := range cursors {
			cur.Abort()
		}
	}

	for i, g := range genomes {
		st, err := p.Store(g, c.Name)
		if err != nil {
			abort()
			return Summary{}, err
		}
		cur, err := st.BeginSweep()
		if err != nil {
			abort()
			return Summary{}, &InvariantError{Chrom: c.Name, Genome: g, Err: err}
		}
		stores[i] = st
		cursors = append(cursors, cur)
	}

	idx := NewSweepIndex(stores)
	sum := Summary{Chrom: c.Name, Positions: idx.Len()}
	current := make([]*variant.Record, len(cursors))
	var extension int64

	for ; idx.Valid(); idx.Advance() {
		if err := ctx.Err(); err != nil {
			abort()
			return Summary{}, fmt.Errorf("%w: %s stopped at %d: %w", ErrIncomplete, c.Name, idx.Current(), err)
		}
		pos := idx.Current()

		var maxLength int64
		insertion := false
		for i, cur := range cursors {
			r, err := cur.At(pos)
			if err != nil {
				abort()
				return Summary{}, &InvariantError{Chrom: c.Name, Genome: genomes[i], Err: err}
			}
			current[i] = r
			if r == nil {
				continue
			}
			r.ChainFrom(cur.Previous())
			r.ExtraOffset = 0
			r.GapOffset = 0
			if r.Type == variant.Insertion {
				insertion = true
				maxLength = max(maxLength, r.Length)
			}
		}

		if insertion {
			sum.InsertionLoci++
			extension += maxLength
		}

		for i, cur := range cursors {
			r := current[i]
			switch {
			case r != nil:
				switch {
				case !insertion:
				case r.Type == variant.Insertion:
					if r.Length < maxLength {
						r.ExtraOffset = maxLength - r.Length
						sum.Padded++
					}
				case r.Type != variant.Blank:
					r.GapOffset = maxLength
					sum.Gapped++
				}
				cur.Advance()
			case insertion:
				blank := variant.NewBlank(pos, maxLength)
				blank.ChainFrom(cur.Previous())
				cur.Insert(blank)
				sum.Blanks++
			}

			// Every stream must have advanced by the same meta-genome width.
			var got int64
			if prev := cur.Previous(); prev != nil {
				got = prev.NextMetaGenomeOffset()
			}
			if got != extension {
				abort()
				return Summary{}, &InvariantError{
					Chrom:  c.Name,
					Genome: genomes[i],
					Err:    fmt.Errorf("meta-genome offset %d at %d, expected %d", got, pos, extension),
				}
			}
		}
	}

	for i, cur := range cursors {
		if n := cur.Remaining(); n > 0 {
			abort()
			return Summary{}, &InvariantError{Chrom: c.Name, Genome: genomes[i], Err: fmt.Errorf("%d records not visited: %w", n, store.ErrIncompleteSweep)}
		}
	}
	for i, cur := range cursors {
		if err := cur.Commit(); err != nil {
			abort()
			return Summary{}, &InvariantError{Chrom: c.Name, Genome: genomes[i], Err: err}
		}
	}

	sum.MetaLength = c.Length + extension
	return sum, nil
}

// SynchronizeAll sweeps every chromosome of the project, at most workers at
// a time. If workers is 0, runtime.NumCPU() is used. A failing chromosome
// does not stop the others; summaries of the successful ones are returned
// in project order together with the joined errors.
func (s *Synchronizer) SynchronizeAll(ctx context.Context, p *Project, workers int) ([]Summary, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	chroms := p.Chromosomes()
	sums := make([]Summary, len(chroms))
	errs := make([]error, len(chroms))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range chroms {
		g.Go(func() error {
			sums[i], errs[i] = s.SynchronizeChromosome(ctx, p, c.Name)
			if errs[i] != nil {
				s.logger.Warn("chromosome synchronization failed",
					zap.String("chrom", c.Name),
					zap.Error(errs[i]))
			}
			return nil
		})
	}
	_ = g.Wait()

	var done []Summary
	for i := range chroms {
		if errs[i] == nil {
			done = append(done, sums[i])
		}
	}
	return done, errors.Join(errs...)
}
