// Package metagenome synchronizes the coordinate streams of several genomes
// called against one reference into a shared meta-genome axis, and
// translates positions between the reference, each genome and that axis.
package metagenome

import (
	"errors"
	"fmt"
	"sync"

	"github.com/inodb/metagenome/internal/store"
	"github.com/inodb/metagenome/internal/variant"
)

// Chromosome is a reference sequence and its length.
type Chromosome struct {
	Name   string
	Length int64
}

type storeKey struct {
	genome string
	chrom  string
}

type chromState int

const (
	stateLoaded chromState = iota
	stateSweeping
	stateSynchronized
)

// Project owns the genomes, chromosomes and variant stores of one loaded
// data set. It is passed explicitly to the loader, synchronizer and
// translator.
type Project struct {
	reference string
	genomes   []string
	chroms    []Chromosome
	chromIdx  map[string]int
	stores    map[storeKey]*store.Store
	stats     map[string]*variant.Stats

	mu          sync.Mutex
	state       map[string]chromState
	metaLengths map[string]int64
}

// NewProject creates a project with one empty store per genome and
// chromosome, including the reference genome.
func NewProject(reference string, genomes []string, chroms []Chromosome) (*Project, error) {
	if reference == "" {
		return nil, errors.New("reference genome name is required")
	}
	p := &Project{
		reference:   reference,
		chromIdx:    make(map[string]int, len(chroms)),
		stores:      make(map[storeKey]*store.Store),
		stats:       make(map[string]*variant.Stats, len(chroms)),
		state:       make(map[string]chromState, len(chroms)),
		metaLengths: make(map[string]int64, len(chroms)),
	}

	seen := map[string]bool{reference: true}
	for _, g := range genomes {
		if g == "" {
			return nil, errors.New("empty genome name")
		}
		if seen[g] {
			return nil, fmt.Errorf("duplicate genome %q", g)
		}
		seen[g] = true
		p.genomes = append(p.genomes, g)
	}

	for _, c := range chroms {
		if _, ok := p.chromIdx[c.Name]; ok {
			return nil, fmt.Errorf("duplicate chromosome %q", c.Name)
		}
		if c.Length < 0 {
			return nil, fmt.Errorf("chromosome %q has negative length", c.Name)
		}
		p.chromIdx[c.Name] = len(p.chroms)
		p.chroms = append(p.chroms, c)
		p.stats[c.Name] = &variant.Stats{}
		for _, g := range p.AllGenomes() {
			p.stores[storeKey{g, c.Name}] = store.New(g, c.Name)
		}
	}

	return p, nil
}

// Reference returns the reference genome name.
func (p *Project) Reference() string { return p.reference }

// Genomes returns the non-reference genome names in load order.
func (p *Project) Genomes() []string { return p.genomes }

// AllGenomes returns the reference genome followed by every other genome.
func (p *Project) AllGenomes() []string {
	out := make([]string, 0, len(p.genomes)+1)
	out = append(out, p.reference)
	return append(out, p.genomes...)
}

// HasGenome reports whether name is the reference or a loaded genome.
func (p *Project) HasGenome(name string) bool {
	if name == p.reference {
		return true
	}
	for _, g := range p.genomes {
		if g == name {
			return true
		}
	}
	return false
}

// Chromosomes returns the chromosomes in load order.
func (p *Project) Chromosomes() []Chromosome { return p.chroms }

// Chromosome looks up a chromosome by name.
func (p *Project) Chromosome(name string) (Chromosome, bool) {
	i, ok := p.chromIdx[name]
	if !ok {
		return Chromosome{}, false
	}
	return p.chroms[i], true
}

// Store returns the store of one genome on one chromosome.
func (p *Project) Store(genome, chrom string) (*store.Store, error) {
	if _, ok := p.chromIdx[chrom]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChromosome, chrom)
	}
	s, ok := p.stores[storeKey{genome, chrom}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenome, genome)
	}
	return s, nil
}

// Stats returns the classification counters of a chromosome, or nil for
// an unknown chromosome.
func (p *Project) Stats(chrom string) *variant.Stats {
	return p.stats[chrom]
}

// TotalStats returns the counters merged over all chromosomes.
func (p *Project) TotalStats() *variant.Stats {
	total := &variant.Stats{}
	for _, c := range p.chroms {
		total.Merge(p.stats[c.Name])
	}
	return total
}

// Synchronized reports whether the chromosome's sweep has completed.
func (p *Project) Synchronized(chrom string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state[chrom] == stateSynchronized
}

// MetaLength returns the reference length of chrom widened by every
// insertion locus. It fails for chromosomes that are not synchronized.
func (p *Project) MetaLength(chrom string) (int64, error) {
	if _, ok := p.chromIdx[chrom]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownChromosome, chrom)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state[chrom] != stateSynchronized {
		return 0, fmt.Errorf("%w: %s", ErrIncomplete, chrom)
	}
	return p.metaLengths[chrom], nil
}

// MarkRestored flags a chromosome as synchronized after its stores were
// restored from persistent storage.
func (p *Project) MarkRestored(chrom string, metaLength int64) error {
	c, ok := p.Chromosome(chrom)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChromosome, chrom)
	}
	if metaLength < c.Length {
		return &InvariantError{Chrom: chrom, Err: fmt.Errorf("meta length %d shorter than reference length %d", metaLength, c.Length)}
	}
	for _, g := range p.AllGenomes() {
		if !p.stores[storeKey{g, chrom}].Synchronized() {
			return &InvariantError{Chrom: chrom, Genome: g, Err: store.ErrIncompleteSweep}
		}
	}
	if err := p.claim(chrom); err != nil {
		return err
	}
	p.finish(chrom, metaLength)
	return nil
}

// claim moves a chromosome into the sweeping state.
func (p *Project) claim(chrom string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state[chrom] {
	case stateSweeping:
		return &InvariantError{Chrom: chrom, Err: store.ErrSweepInProgress}
	case stateSynchronized:
		return &InvariantError{Chrom: chrom, Err: store.ErrAlreadySynchronized}
	}
	p.state[chrom] = stateSweeping
	return nil
}

func (p *Project) release(chrom string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state[chrom] = stateLoaded
}

func (p *Project) finish(chrom string, metaLength int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state[chrom] = stateSynchronized
	p.metaLengths[chrom] = metaLength
}
