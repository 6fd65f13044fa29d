package output

import (
	"fmt"
	"io"

	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/variant"
)

// WriteStats prints the classification counters, stored outcomes first,
// in declaration order. Zero counters are omitted.
func WriteStats(w io.Writer, title string, s *variant.Stats) {
	fmt.Fprintf(w, "\n%s (%d calls, %d stored, %d skipped):\n", title, s.Total(), s.Stored(), s.Skipped())
	for _, o := range variant.Outcomes() {
		n := s.Count(o)
		if n == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-24s%d\n", o, n)
	}
}

// WriteSyncSummary prints one line per synchronized chromosome.
func WriteSyncSummary(w io.Writer, summaries []metagenome.Summary) {
	fmt.Fprintf(w, "\nSynchronized %d chromosome(s):\n", len(summaries))
	fmt.Fprintf(w, "  %-10s%10s%10s%8s%8s%8s%12s\n", "chrom", "positions", "ins_loci", "blanks", "padded", "gapped", "meta_length")
	for _, s := range summaries {
		fmt.Fprintf(w, "  %-10s%10d%10d%8d%8d%8d%12d\n",
			s.Chrom, s.Positions, s.InsertionLoci, s.Blanks, s.Padded, s.Gapped, s.MetaLength)
	}
}
