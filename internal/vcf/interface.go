// Package vcf reads variant calls and their per-sample genotypes from VCF
// files.
package vcf

// VariantParser is the interface for readers that yield VCF data lines.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// SampleNames returns the sample columns of the #CHROM header line.
	SampleNames() []string

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
