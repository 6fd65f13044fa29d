package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inodb/metagenome/internal/duckdb"
	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/output"
)

// metaAxis names the meta-genome coordinate system on the command line.
const metaAxis = "meta"

func newTranslateCmd(root *rootOptions) *cobra.Command {
	var runID, chrom, from, to string

	cmd := &cobra.Command{
		Use:   "translate <pos>...",
		Short: "Translate 0-based positions between the reference, genomes and the meta-genome",
		Long: `Translate 0-based positions of a stored run. --from and --to take a genome
name, the reference name, or "meta" for the meta-genome axis.`,
		Example: `  metagenome translate --chrom 1 --from reference --to meta 49 50 51
  metagenome translate --run 3f0c... --chrom 1 --from strainA --to strainB 1200`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positions := make([]int64, len(args))
			for i, a := range args {
				n, err := strconv.ParseInt(a, 10, 64)
				if err != nil || n < 0 {
					return fmt.Errorf("invalid position %q", a)
				}
				positions[i] = n
			}

			return withDB(func(db *duckdb.Store) error {
				p, err := loadRun(db, runID)
				if err != nil {
					return err
				}
				t := metagenome.NewTranslator(p)

				w := output.NewTranslationWriter(cmd.OutOrStdout())
				if err := w.WriteHeader(); err != nil {
					return err
				}
				for _, pos := range positions {
					got, err := translate(t, p.Reference(), chrom, from, to, pos)
					if err != nil {
						return err
					}
					if err := w.Write(chrom, from, to, pos, got); err != nil {
						return err
					}
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run id (default: most recent run)")
	cmd.Flags().StringVar(&chrom, "chrom", "", "chromosome")
	cmd.Flags().StringVar(&from, "from", "", "source coordinate system")
	cmd.Flags().StringVar(&to, "to", metaAxis, "target coordinate system")
	_ = cmd.MarkFlagRequired("chrom")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

// translate converts pos between two coordinate systems. Genome to genome
// queries go through the meta-genome; the result keeps the weaker status
// of the two steps.
func translate(t *metagenome.Translator, reference, chrom, from, to string, pos int64) (metagenome.Position, error) {
	switch {
	case from == to:
		return metagenome.Position{}, fmt.Errorf("--from and --to are both %q", from)
	case from == metaAxis && to == reference:
		return t.MetaToReference(chrom, pos)
	case from == metaAxis:
		return t.MetaToGenome(to, chrom, pos)
	case to == metaAxis && from == reference:
		return t.ReferenceToMeta(chrom, pos)
	case to == metaAxis:
		return t.GenomeToMeta(from, chrom, pos)
	case from == reference:
		return t.ReferenceToGenome(to, chrom, pos)
	case to == reference:
		return t.GenomeToReference(from, chrom, pos)
	}

	meta, err := t.GenomeToMeta(from, chrom, pos)
	if err != nil {
		return metagenome.Position{}, err
	}
	got, err := t.MetaToGenome(to, chrom, meta.Pos)
	if err != nil {
		return metagenome.Position{}, err
	}
	got.Status = max(got.Status, meta.Status)
	return got, nil
}
