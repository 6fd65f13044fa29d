// Package loader fills a project's variant stores from VCF files.
package loader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/store"
	"github.com/inodb/metagenome/internal/variant"
	"github.com/inodb/metagenome/internal/vcf"
)

// Summary counts what one Load call consumed.
type Summary struct {
	Rows         int // data lines read
	Calls        int // genotypes classified
	Stored       int // records added to stores
	UnknownChrom int // data lines on chromosomes absent from the project
}

// Loader classifies VCF genotypes and adds the resulting records to the
// stores of a project. Rows must arrive in ascending position order per
// chromosome and genome; anything else fails the load.
type Loader struct {
	p       *metagenome.Project
	samples map[string]string
	logger  *zap.Logger
}

// New creates a loader for p.
func New(p *metagenome.Project) *Loader {
	return &Loader{
		p:      p,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warnings about skipped input.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// SetSampleMap renames VCF sample columns to genome names. Samples absent
// from the map keep their column name.
func (l *Loader) SetSampleMap(m map[string]string) {
	l.samples = m
}

// GenomeName returns the genome a sample column is loaded into.
func (l *Loader) GenomeName(sample string) string {
	return genomeName(l.samples, sample)
}

// GenomeNames returns the distinct genomes the given sample columns load
// into, in first-seen order. Samples mapped to the reference are dropped.
func GenomeNames(reference string, samples []string, m map[string]string) []string {
	seen := map[string]bool{reference: true}
	var out []string
	for _, sample := range samples {
		g := genomeName(m, sample)
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

func genomeName(m map[string]string, sample string) string {
	if g, ok := m[sample]; ok {
		return g
	}
	return sample
}

// Load reads every row of parser.
func (l *Loader) Load(parser vcf.VariantParser) (Summary, error) {
	var sum Summary

	type column struct {
		index  int
		genome string
	}
	var columns []column
	for i, name := range parser.SampleNames() {
		g := l.GenomeName(name)
		if g == l.p.Reference() {
			l.logger.Warn("sample loads into the reference genome, ignoring",
				zap.String("sample", name), zap.String("reference", g))
			continue
		}
		if !l.p.HasGenome(g) {
			l.logger.Warn("sample not in project, ignoring", zap.String("sample", name))
			continue
		}
		columns = append(columns, column{index: i, genome: g})
	}

	unknown := make(map[string]bool)
	for {
		v, err := parser.Next()
		if err != nil {
			return sum, fmt.Errorf("read variant: %w", err)
		}
		if v == nil {
			break
		}
		sum.Rows++

		chrom, ok := l.chromosome(v)
		if !ok {
			sum.UnknownChrom++
			if !unknown[v.Chrom] {
				unknown[v.Chrom] = true
				l.logger.Warn("chromosome not in project, skipping its rows", zap.String("chrom", v.Chrom))
			}
			continue
		}
		stats := l.p.Stats(chrom)

		// VCF POS is 1-based and names the padding base before the event;
		// as a 0-based coordinate the same number is the first base the
		// event affects.
		row := variant.Row{
			Pos:      v.Pos,
			Ref:      v.Ref,
			Alts:     v.Alts(),
			SVLength: v.SVLength(),
		}

		for _, col := range columns {
			res := variant.Classify(row, v.Genotype(col.index))
			sum.Calls++
			if !res.Found() {
				stats.Add(res.Outcome)
				continue
			}

			s, err := l.p.Store(col.genome, chrom)
			if err != nil {
				return sum, err
			}
			err = s.Add(res.Record)
			switch {
			case errors.Is(err, store.ErrOverlappingDeletion):
				// One coordinate stream per genome cannot hold both haplotypes.
				stats.Add(variant.OutcomeOverlappingDeletion)
				l.logger.Debug("variant inside an earlier deletion, skipping",
					zap.String("genome", col.genome),
					zap.String("chrom", chrom),
					zap.Int64("pos", v.Pos),
					zap.Int("line", parser.LineNumber()))
				continue
			case err != nil:
				return sum, fmt.Errorf("line %d: %w", parser.LineNumber(),
					&metagenome.InvariantError{Chrom: chrom, Genome: col.genome, Err: err})
			}
			stats.Add(res.Outcome)
			sum.Stored++
		}
	}

	l.logger.Info("loaded variants",
		zap.Int("rows", sum.Rows),
		zap.Int("calls", sum.Calls),
		zap.Int("stored", sum.Stored),
		zap.Int("unknown_chrom_rows", sum.UnknownChrom))
	return sum, nil
}

// chromosome maps a row's chromosome to a project chromosome, tolerating a
// "chr" prefix on either side.
func (l *Loader) chromosome(v *vcf.Variant) (string, bool) {
	for _, name := range []string{v.Chrom, v.NormalizeChrom(), "chr" + v.Chrom} {
		if _, ok := l.p.Chromosome(name); ok {
			return name, true
		}
	}
	return "", false
}

// IsOrderError reports whether err comes from rows delivered out of order
// or twice for the same position.
func IsOrderError(err error) bool {
	return errors.Is(err, store.ErrUnsorted) || errors.Is(err, store.ErrDuplicatePosition)
}
