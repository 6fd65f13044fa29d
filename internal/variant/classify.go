package variant

import (
	"strconv"
	"strings"
)

// Row is the part of a VCF data line needed to classify one genome's call.
type Row struct {
	Pos      int64    // 0-based position the variant takes effect at
	Ref      string   // reference allele
	Alts     []string // alternative alleles, in VCF order
	SVLength int64    // SVLEN or END-POS for symbolic alleles, 0 if absent
}

// Outcome is the classification result for one genotype.
type Outcome int

// Classification outcomes. The first group produce a Record, SNP is counted
// but not stored, the rest are skips.
const (
	OutcomeInsertion Outcome = iota
	OutcomeDeletion
	OutcomeStructuralVariant
	OutcomeSNP
	OutcomeNoVariation
	OutcomeMalformedGenotype
	OutcomeAmbiguousAllele
	OutcomeReferenceOffsetError
	OutcomeUnsupportedBreakend
	// OutcomeOverlappingDeletion is set by the loader, not the classifier:
	// the record starts inside a deletion already stored for the genome.
	OutcomeOverlappingDeletion

	numOutcomes
)

var outcomeNames = [numOutcomes]string{
	"insertion",
	"deletion",
	"structural_variant",
	"snp",
	"no_variation",
	"malformed_genotype",
	"ambiguous_allele",
	"reference_offset_error",
	"unsupported_breakend",
	"overlapping_deletion",
}

// String returns the counter name of the outcome.
func (o Outcome) String() string {
	if o < 0 || o >= numOutcomes {
		return "unknown"
	}
	return outcomeNames[o]
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	for i, name := range outcomeNames {
		if name == s {
			return Outcome(i), true
		}
	}
	return 0, false
}

// Skipped reports whether the outcome drops the call.
func (o Outcome) Skipped() bool {
	return o >= OutcomeNoVariation
}

// Result is the classifier's answer for one genotype: a record, or the
// reason there is none.
type Result struct {
	Record  *Record
	Outcome Outcome
}

// Found reports whether the result carries a record to store.
func (r Result) Found() bool {
	return r.Record != nil
}

// Classify turns one genome's genotype at a row into a Result.
func Classify(row Row, genotype string) Result {
	a, b, ok := ParseGenotype(genotype)
	if !ok {
		return Result{Outcome: OutcomeMalformedGenotype}
	}
	if a != b && a != 0 && b != 0 {
		return Result{Outcome: OutcomeAmbiguousAllele}
	}

	pos := a
	if pos == 0 {
		pos = b
	}
	if pos == 0 {
		return Result{Outcome: OutcomeNoVariation}
	}
	if pos > len(row.Alts) {
		return Result{Outcome: OutcomeReferenceOffsetError}
	}
	alt := row.Alts[pos-1]

	rec := &Record{
		Pos:            row.Pos,
		OnFirstAllele:  a == pos,
		OnSecondAllele: b == pos,
	}

	switch {
	case strings.HasPrefix(alt, "<"):
		rec.Type = StructuralVariant
		rec.Length = abs(row.SVLength)
		return Result{Record: rec, Outcome: OutcomeStructuralVariant}
	case strings.ContainsAny(alt, "[]"):
		return Result{Outcome: OutcomeUnsupportedBreakend}
	case len(alt) == len(row.Ref):
		// SNPs and same-length substitutions never shift coordinates.
		return Result{Outcome: OutcomeSNP}
	case len(alt) > len(row.Ref):
		rec.Type = Insertion
		rec.Length = int64(len(alt) - len(row.Ref))
		return Result{Record: rec, Outcome: OutcomeInsertion}
	default:
		rec.Type = Deletion
		rec.Length = int64(len(row.Ref) - len(alt))
		return Result{Record: rec, Outcome: OutcomeDeletion}
	}
}

// ParseGenotype extracts the two allele indices of a GT token.
// Accepts haploid ("1"), diploid with "/" or "|", multi-digit indices
// and "." for a missing allele, which counts as reference.
func ParseGenotype(gt string) (a, b int, ok bool) {
	if gt == "" {
		return 0, 0, false
	}
	sep := strings.IndexAny(gt, "/|")
	if sep < 0 {
		a, ok = parseAllele(gt)
		return a, a, ok
	}
	first, second := gt[:sep], gt[sep+1:]
	if strings.ContainsAny(second, "/|") {
		return 0, 0, false
	}
	if a, ok = parseAllele(first); !ok {
		return 0, 0, false
	}
	if b, ok = parseAllele(second); !ok {
		return 0, 0, false
	}
	return a, b, true
}

func parseAllele(s string) (int, bool) {
	if s == "." {
		return 0, true
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
