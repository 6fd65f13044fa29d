package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/metagenome/internal/duckdb"
	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/output"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored synchronization runs",
		Example: `  metagenome runs
  metagenome runs show 3f0c...
  metagenome runs delete 3f0c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *duckdb.Store) error {
				runs, err := db.ListRuns()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN\tREFERENCE\tCREATED\tGENOMES\tCHROMOSOMES\tRECORDS")
				for _, r := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
						r.ID, r.Reference, r.CreatedAt.Format("2006-01-02 15:04:05"),
						r.Genomes, r.Chromosomes, r.Records)
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run>",
		Short: "Show the chromosomes, counters and inputs of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *duckdb.Store) error {
				p, err := db.LoadRun(args[0])
				if err != nil {
					return err
				}
				sources, err := db.Sources(args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s\n  reference: %s\n  genomes:   %v\n", args[0], p.Reference(), p.Genomes())

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "\nCHROM\tLENGTH\tMETA_LENGTH")
				for _, c := range p.Chromosomes() {
					metaLength := "-"
					if n, err := p.MetaLength(c.Name); err == nil {
						metaLength = fmt.Sprint(n)
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Length, metaLength)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				output.WriteStats(out, "All chromosomes", p.TotalStats())

				if len(sources) > 0 {
					fmt.Fprintln(out, "\nInputs:")
					for _, src := range sources {
						state := "unchanged"
						if !src.Matches() {
							state = "changed since run"
						}
						fmt.Fprintf(out, "  %s (%d bytes, %s)\n", src.Path, src.Size, state)
					}
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <run>",
		Short: "Delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *duckdb.Store) error {
				if _, err := db.LoadRun(args[0]); err != nil {
					return err
				}
				if err := db.DeleteRun(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

// withDB opens the configured database for the duration of fn.
func withDB(fn func(db *duckdb.Store) error) error {
	db, err := duckdb.Open(viper.GetString("db.path"))
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// loadRun restores a run, or the most recent one when runID is empty.
func loadRun(db *duckdb.Store, runID string) (*metagenome.Project, error) {
	if runID == "" {
		runs, err := db.ListRuns()
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("no runs stored in %s", viper.GetString("db.path"))
		}
		runID = runs[0].ID
	}
	return db.LoadRun(runID)
}
