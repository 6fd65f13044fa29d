package metagenome

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation marks errors that break the single-pass chaining
	// precondition of a sweep: duplicate or unsorted records, or a second
	// synchronization of the same chromosome.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrIncomplete is returned for chromosomes whose sweep did not finish.
	ErrIncomplete = errors.New("chromosome not synchronized")
	// ErrUnknownGenome is returned for genome names absent from the project.
	ErrUnknownGenome = errors.New("unknown genome")
	// ErrUnknownChromosome is returned for chromosome names absent from the
	// project.
	ErrUnknownChromosome = errors.New("unknown chromosome")
)

// InvariantError reports an invariant violation on one chromosome.
type InvariantError struct {
	Chrom  string
	Genome string // empty when the violation is not tied to one genome
	Err    error
}

func (e *InvariantError) Error() string {
	if e.Genome == "" {
		return fmt.Sprintf("invariant violation on %s: %v", e.Chrom, e.Err)
	}
	return fmt.Sprintf("invariant violation on %s (%s): %v", e.Chrom, e.Genome, e.Err)
}

// Unwrap lets errors.Is match both ErrInvariantViolation and the cause.
func (e *InvariantError) Unwrap() []error {
	return []error{ErrInvariantViolation, e.Err}
}
