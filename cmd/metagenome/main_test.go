package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// runCmd runs the root command with a fresh viper state, returning stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, &rootOptions{}, args...)
}

func runWith(t *testing.T, opts *rootOptions, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	cmd := newRootCmd(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := execute(cmd, opts)
	return out.String(), err
}

// syncCounter is a log sink that counts flushes.
type syncCounter struct {
	bytes.Buffer
	syncs int
}

func (s *syncCounter) Sync() error {
	s.syncs++
	return nil
}

func countingLogger(sink *syncCounter) func(bool) (*zap.Logger, error) {
	return func(bool) (*zap.Logger, error) {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, sink, zapcore.DebugLevel)), nil
	}
}

func testVCF(t *testing.T) string {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", "three_genomes.vcf")
	if _, err := os.Stat(path); err != nil {
		t.Skip("testdata not found")
	}
	return path
}

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return filepath.Join(t.TempDir(), "runs.duckdb")
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "metagenome version dev")
}

func TestLoggerSyncedOnSuccess(t *testing.T) {
	setup(t)
	sink := &syncCounter{}

	_, err := runWith(t, &rootOptions{buildLogger: countingLogger(sink)}, "version")
	require.NoError(t, err)
	assert.Equal(t, 1, sink.syncs)
}

func TestLoggerSyncedOnError(t *testing.T) {
	db := setup(t)
	sink := &syncCounter{}

	_, err := runWith(t, &rootOptions{buildLogger: countingLogger(sink)},
		"sync", "--db", db, "--profile", "bogus", testVCF(t))
	require.ErrorContains(t, err, "unknown profile")
	assert.Equal(t, 1, sink.syncs)
}

func TestSyncThenTranslate(t *testing.T) {
	db := setup(t)
	vcfPath := testVCF(t)

	out, err := runCmd(t, "sync", "--db", db, "--workers", "2", vcfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "All chromosomes (18 calls, 5 stored, 12 skipped)")
	assert.Contains(t, out, "Synchronized 2 chromosome(s)")
	assert.Contains(t, out, "1004")
	assert.Contains(t, out, "saved to "+db)

	out, err = runCmd(t, "translate", "--db", db, "--chrom", "1", "--from", "reference", "--to", "meta", "49", "50", "51")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1\treference\tmeta\t49\t49\tunanchored", lines[1])
	assert.Equal(t, "1\treference\tmeta\t50\t54\tresolved", lines[2])
	assert.Equal(t, "1\treference\tmeta\t51\t55\tresolved", lines[3])

	// The first inserted base of A opens the meta-genome locus.
	out, err = runCmd(t, "translate", "--db", db, "--chrom", "1", "--from", "A", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tA\tmeta\t50\t50\tresolved")

	out, err = runCmd(t, "records", "--db", db, "--genome", "B", "--chrom", "1")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "B\t1\t50\tinsertion\t2\t"))
}

func TestSyncNoSave(t *testing.T) {
	db := setup(t)

	_, err := runCmd(t, "sync", "--db", db, "--no-save", testVCF(t))
	require.NoError(t, err)

	_, err = os.Stat(db)
	assert.True(t, os.IsNotExist(err))
}

func TestSyncSampleMapAndFai(t *testing.T) {
	db := setup(t)

	fai := filepath.Join(t.TempDir(), "ref.fa.fai")
	require.NoError(t, os.WriteFile(fai, []byte("1\t1000\t3\t60\t61\n"), 0644))

	out, err := runCmd(t, "sync", "--db", db, "--fai", fai, "--reference-name", "hg",
		"--sample-map", "A=strainA", testVCF(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Synchronized 1 chromosome(s)")

	out, err = runCmd(t, "records", "--db", db, "--genome", "strainA")
	require.NoError(t, err)
	assert.Contains(t, out, "strainA\t1\t50\tinsertion\t4\t")

	out, err = runCmd(t, "translate", "--db", db, "--chrom", "1", "--from", "meta", "--to", "hg", "52")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tmeta\thg\t52\t50\tunresolved")
}

func TestRunsListShowDelete(t *testing.T) {
	db := setup(t)
	vcfPath := testVCF(t)

	_, err := runCmd(t, "sync", "--db", db, vcfPath)
	require.NoError(t, err)

	out, err := runCmd(t, "runs", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	runID := strings.Fields(lines[1])[0]

	out, err = runCmd(t, "runs", "show", "--db", db, runID)
	require.NoError(t, err)
	assert.Contains(t, out, "reference: reference")
	assert.Contains(t, out, "three_genomes.vcf")
	assert.Contains(t, out, "unchanged")

	_, err = runCmd(t, "runs", "delete", "--db", db, runID)
	require.NoError(t, err)

	_, err = runCmd(t, "runs", "show", "--db", db, runID)
	assert.Error(t, err)
}

func TestTranslateWithoutRuns(t *testing.T) {
	db := setup(t)
	_, err := runCmd(t, "translate", "--db", db, "--chrom", "1", "--from", "reference", "10")
	assert.ErrorContains(t, err, "no runs stored")
}

func TestTranslateInvalidPosition(t *testing.T) {
	db := setup(t)
	_, err := runCmd(t, "translate", "--db", db, "--chrom", "1", "--from", "reference", "x")
	assert.ErrorContains(t, err, "invalid position")
}

func TestConfigSetGet(t *testing.T) {
	setup(t)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("reference:\n  name: hg38\n"), 0644))

	out, err := runCmd(t, "config", "--config", cfg, "get", "reference.name")
	require.NoError(t, err)
	assert.Equal(t, "hg38\n", out)

	_, err = runCmd(t, "config", "--config", cfg, "set", "sync.workers", "4")
	require.NoError(t, err)

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers: 4")

	_, err = runCmd(t, "config", "--config", cfg, "get", "missing.key")
	assert.Error(t, err)
}

func TestConfigEnvOverride(t *testing.T) {
	setup(t)
	t.Setenv("METAGENOME_REFERENCE_NAME", "from-env")

	out, err := runCmd(t, "config", "get", "reference.name")
	require.NoError(t, err)
	assert.Equal(t, "from-env\n", out)
}
