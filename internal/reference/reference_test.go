package reference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/metagenome/internal/metagenome"
)

const testFai = "chr2\t500\t1030\t60\t61\n" +
	"chr1\t1000\t6\t60\t61\n"

func TestReadFai(t *testing.T) {
	chroms, err := ReadFai(strings.NewReader(testFai))
	require.NoError(t, err)
	assert.Equal(t, []metagenome.Chromosome{
		{Name: "chr1", Length: 1000},
		{Name: "chr2", Length: 500},
	}, chroms)
}

func TestLoadFai(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.fa.fai")
	require.NoError(t, os.WriteFile(path, []byte(testFai), 0644))

	chroms, err := LoadFai(path)
	require.NoError(t, err)
	assert.Len(t, chroms, 2)

	_, err = LoadFai(filepath.Join(t.TempDir(), "missing.fai"))
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	header := []string{
		"##fileformat=VCFv4.2",
		"##contig=<ID=1,length=1000>",
		"##contig=<ID=2,assembly=GRCh38,length=500>",
		"##contig=<ID=MT>",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	}

	chroms, err := FromHeader(header)
	require.NoError(t, err)
	assert.Equal(t, []metagenome.Chromosome{
		{Name: "1", Length: 1000},
		{Name: "2", Length: 500},
	}, chroms)

	_, err = FromHeader([]string{"##contig=<ID=1,length=many>"})
	assert.Error(t, err)
}
