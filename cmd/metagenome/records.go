package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/metagenome/internal/duckdb"
	"github.com/inodb/metagenome/internal/output"
)

func newRecordsCmd(root *rootOptions) *cobra.Command {
	var runID, genome, chrom string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Print the synchronized records of a run",
		Example: `  metagenome records
  metagenome records --run 3f0c... --genome strainA --chrom 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *duckdb.Store) error {
				p, err := loadRun(db, runID)
				if err != nil {
					return err
				}

				genomes := p.AllGenomes()
				if genome != "" {
					if !p.HasGenome(genome) {
						return fmt.Errorf("unknown genome %q", genome)
					}
					genomes = []string{genome}
				}
				var chroms []string
				for _, c := range p.Chromosomes() {
					if chrom == "" || c.Name == chrom {
						chroms = append(chroms, c.Name)
					}
				}
				if len(chroms) == 0 {
					return fmt.Errorf("unknown chromosome %q", chrom)
				}

				w := output.NewRecordWriter(cmd.OutOrStdout())
				if err := w.WriteHeader(); err != nil {
					return err
				}
				for _, c := range chroms {
					if !p.Synchronized(c) {
						root.logger.Warn("chromosome was not synchronized in this run", zap.String("chrom", c))
						continue
					}
					for _, g := range genomes {
						s, err := p.Store(g, c)
						if err != nil {
							return err
						}
						for _, r := range s.Records() {
							if err := w.Write(g, c, r); err != nil {
								return err
							}
						}
					}
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run id (default: most recent run)")
	cmd.Flags().StringVar(&genome, "genome", "", "only this genome")
	cmd.Flags().StringVar(&chrom, "chrom", "", "only this chromosome")

	return cmd
}
