package vcf

import (
	"strconv"
	"strings"
)

// Variant represents a single VCF data line with its sample columns.
type Variant struct {
	Chrom   string                 // Chromosome name (e.g., "12", "chr12")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier (e.g., rs ID)
	Ref     string                 // Reference allele
	Alt     string                 // Comma-separated alternate alleles
	Qual    float64                // Quality score
	Filter  string                 // Filter status (PASS or filter name)
	Info    map[string]interface{} // INFO field key-value pairs
	Format  []string               // FORMAT keys, e.g. GT:DP
	Samples []string               // raw sample columns, in header order
}

// Alts returns the alternate alleles. A missing ALT (".") yields none.
func (v *Variant) Alts() []string {
	if v.Alt == "" || v.Alt == "." {
		return nil
	}
	return strings.Split(v.Alt, ",")
}

// Genotype returns the GT value of the i-th sample, or "" if the line has
// no GT field or no such sample.
func (v *Variant) Genotype(i int) string {
	if i < 0 || i >= len(v.Samples) {
		return ""
	}
	gt := -1
	for j, key := range v.Format {
		if key == "GT" {
			gt = j
			break
		}
	}
	if gt < 0 {
		return ""
	}
	fields := strings.Split(v.Samples[i], ":")
	if gt >= len(fields) {
		return ""
	}
	return fields[gt]
}

// SVLength returns the structural variant length from INFO SVLEN, falling
// back to END-POS. Returns 0 if neither is present.
func (v *Variant) SVLength() int64 {
	if s, ok := v.Info["SVLEN"].(string); ok {
		// Multi-allelic SVLEN lists one value per ALT; the first is used.
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[:i]
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	if s, ok := v.Info["END"].(string); ok {
		if end, err := strconv.ParseInt(s, 10, 64); err == nil {
			return end - v.Pos
		}
	}
	return 0
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
