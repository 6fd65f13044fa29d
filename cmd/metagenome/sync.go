package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/metagenome/internal/duckdb"
	"github.com/inodb/metagenome/internal/loader"
	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/output"
	"github.com/inodb/metagenome/internal/reference"
	"github.com/inodb/metagenome/internal/vcf"
)

type syncOptions struct {
	sampleMap  map[string]string
	profile    string
	profileDir string
	noSave     bool
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync <vcf>...",
		Short: "Load VCF files and synchronize every genome on the meta-genome axis",
		Long: `Load the genotype columns of one or more VCF files, one genome per sample,
synchronize all chromosomes and store the run in the DuckDB database.

Chromosome lengths come from --fai when set, otherwise from the
##contig headers of the input files.`,
		Example: `  metagenome sync calls.vcf.gz
  metagenome sync --fai ref.fa.fai --sample-map S1=strainA,S2=strainB a.vcf b.vcf
  metagenome sync --workers 4 --profile cpu calls.vcf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, root, opts, args)
		},
	}

	cmd.Flags().String("reference-name", "reference", "name of the reference genome")
	cmd.Flags().String("fai", "", "samtools FASTA index with the chromosome lengths")
	cmd.Flags().Int("workers", 0, "chromosomes synchronized in parallel (0 = number of CPUs)")
	cmd.Flags().StringToStringVar(&opts.sampleMap, "sample-map", nil, "rename sample columns to genomes, e.g. S1=strainA")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "write a cpu or mem profile")
	cmd.Flags().StringVar(&opts.profileDir, "profile-dir", ".", "directory for profile output")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not store the run in the database")

	_ = viper.BindPFlag("reference.name", cmd.Flags().Lookup("reference-name"))
	_ = viper.BindPFlag("reference.fai", cmd.Flags().Lookup("fai"))
	_ = viper.BindPFlag("sync.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runSync(cmd *cobra.Command, root *rootOptions, opts *syncOptions, paths []string) error {
	logger := root.logger

	switch opts.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.profileDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(opts.profileDir), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q: must be cpu or mem", opts.profile)
	}

	parsers := make([]*vcf.Parser, 0, len(paths))
	defer func() {
		for _, p := range parsers {
			p.Close()
		}
	}()
	var samples []string
	for _, path := range paths {
		p, err := vcf.NewParser(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		parsers = append(parsers, p)
		samples = append(samples, p.SampleNames()...)
	}

	chroms, err := chromosomes(viper.GetString("reference.fai"), parsers)
	if err != nil {
		return err
	}
	if len(chroms) == 0 {
		return fmt.Errorf("no chromosome lengths: pass --fai or add ##contig headers")
	}

	refName := viper.GetString("reference.name")
	genomes := loader.GenomeNames(refName, samples, opts.sampleMap)
	project, err := metagenome.NewProject(refName, genomes, chroms)
	if err != nil {
		return err
	}
	logger.Info("created project",
		zap.String("reference", refName),
		zap.Int("genomes", len(genomes)),
		zap.Int("chromosomes", len(chroms)))

	l := loader.New(project)
	l.SetLogger(logger)
	l.SetSampleMap(opts.sampleMap)
	for i, p := range parsers {
		if _, err := l.Load(p); err != nil {
			if loader.IsOrderError(err) {
				logger.Error("input is not sorted by position", zap.String("file", paths[i]))
			}
			return fmt.Errorf("%s: %w", paths[i], err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := metagenome.NewSynchronizer()
	s.SetLogger(logger)
	summaries, syncErr := s.SynchronizeAll(ctx, project, viper.GetInt("sync.workers"))

	out := cmd.OutOrStdout()
	output.WriteStats(out, "All chromosomes", project.TotalStats())
	output.WriteSyncSummary(out, summaries)

	if !opts.noSave {
		runID, err := saveRun(project, paths)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nRun %s saved to %s\n", runID, viper.GetString("db.path"))
	}

	if syncErr != nil {
		return fmt.Errorf("synchronize: %w", syncErr)
	}
	return nil
}

// chromosomes reads the reference chromosomes from a FASTA index, or from
// the ##contig headers of the inputs in first-seen order.
func chromosomes(fai string, parsers []*vcf.Parser) ([]metagenome.Chromosome, error) {
	if fai != "" {
		return reference.LoadFai(fai)
	}

	var out []metagenome.Chromosome
	seen := make(map[string]int64)
	for _, p := range parsers {
		chroms, err := reference.FromHeader(p.Header())
		if err != nil {
			return nil, err
		}
		for _, c := range chroms {
			if n, ok := seen[c.Name]; ok {
				if n != c.Length {
					return nil, fmt.Errorf("contig %s has lengths %d and %d", c.Name, n, c.Length)
				}
				continue
			}
			seen[c.Name] = c.Length
			out = append(out, c)
		}
	}
	return out, nil
}

func saveRun(p *metagenome.Project, paths []string) (string, error) {
	var sources []duckdb.FileFingerprint
	for _, path := range paths {
		if path == "-" {
			continue
		}
		fp, err := duckdb.StatFile(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		sources = append(sources, fp)
	}

	db, err := duckdb.Open(viper.GetString("db.path"))
	if err != nil {
		return "", err
	}
	defer db.Close()

	return db.WriteRun(p, sources)
}
