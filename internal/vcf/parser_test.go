package vcf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, p *Parser) []*Variant {
	t.Helper()
	var out []*Variant
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestParser_ThreeGenomes(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "three_genomes.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	assert.Equal(t, []string{"A", "B", "C"}, parser.SampleNames())
	assert.Len(t, parser.Header(), 8)

	variants := readAll(t, parser)
	require.Len(t, variants, 6)

	first := variants[0]
	assert.Equal(t, "1", first.Chrom)
	assert.Equal(t, int64(50), first.Pos)
	assert.Equal(t, []string{"ACGTA", "AGG"}, first.Alts())
	assert.Equal(t, "1/1", first.Genotype(0))
	assert.Equal(t, "2/2", first.Genotype(1))
	assert.Equal(t, "0/0", first.Genotype(2))

	sv := variants[3]
	assert.Equal(t, "2", sv.Chrom)
	assert.Equal(t, int64(-100), sv.SVLength())
	assert.Equal(t, "DEL", sv.Info["SVTYPE"])

	last := variants[5]
	assert.Equal(t, []string{"GT", "DP"}, last.Format)
	assert.Equal(t, "1", last.Genotype(2))
}

func TestParser_Gzip(t *testing.T) {
	plain, err := os.ReadFile(findTestFile(t, "three_genomes.vcf"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "three_genomes.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	assert.Len(t, readAll(t, parser), 6)
}

func TestParser_GzipFromReader(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA\n" +
		"1\t100\t.\tA\tAT\t.\t.\t.\tGT\t1/1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	parser, err := NewParserFromReader(&buf)
	require.NoError(t, err)
	defer parser.Close()

	variants := readAll(t, parser)
	require.Len(t, variants, 1)
	assert.Equal(t, "AT", variants[0].Alt)
	assert.Equal(t, []string{"A"}, parser.SampleNames())
}

func TestParser_NoTrailingNewline(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n1\t100\t.\tA\tAT\t.\t.\t."

	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, readAll(t, parser), 1)
	assert.Equal(t, 2, parser.LineNumber())
}

func TestParser_FromReader(t *testing.T) {
	input := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"1\t100\t.\tA\tAT\t.\t.\t.\n" +
		"\n" +
		"1\t200\t.\tAT\tA\t30\tPASS\tDB;DP=3\n"

	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	variants := readAll(t, parser)
	require.Len(t, variants, 2)
	assert.Empty(t, parser.SampleNames())
	assert.Nil(t, variants[0].Samples)
	assert.Equal(t, true, variants[1].Info["DB"])
	assert.Equal(t, "3", variants[1].Info["DP"])
	assert.Equal(t, 5, parser.LineNumber())
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing header", "1\t100\t.\tA\tT\t.\t.\t.\n"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParserFromReader(strings.NewReader(tt.input))
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParser_BadLines(t *testing.T) {
	header := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA\n"

	tests := []struct {
		name string
		line string
		msg  string
	}{
		{"too few columns", "1\t100\t.\tA\n", "expected at least 8 columns"},
		{"bad position", "1\tx\t.\tA\tT\t.\t.\t.\tGT\t0/1\n", "invalid position"},
		{"missing sample", "1\t100\t.\tA\tT\t.\t.\t.\tGT\n", "expected 1 sample columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewParserFromReader(strings.NewReader(header + tt.line))
			require.NoError(t, err)

			_, err = parser.Next()
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, 2, pe.Line)
			assert.Contains(t, pe.Error(), tt.msg)
		})
	}
}

func TestParser_FileNotFound(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.vcf"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
