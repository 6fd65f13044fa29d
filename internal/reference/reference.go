// Package reference provides the chromosome names and lengths of the
// reference sequence, from a FASTA index or from VCF ##contig headers.
package reference

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/hts/fai"

	"github.com/inodb/metagenome/internal/metagenome"
)

// LoadFai reads chromosome lengths from a samtools .fai index file.
// Chromosomes are returned in file order.
func LoadFai(path string) ([]metagenome.Chromosome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta index: %w", err)
	}
	defer f.Close()
	return ReadFai(f)
}

// ReadFai parses a .fai index.
func ReadFai(r io.Reader) ([]metagenome.Chromosome, error) {
	idx, err := fai.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read fasta index: %w", err)
	}

	recs := make([]fai.Record, 0, len(idx))
	for _, rec := range idx {
		recs = append(recs, rec)
	}
	// Index is a map; the byte offset restores file order.
	sort.Slice(recs, func(i, j int) bool { return recs[i].Start < recs[j].Start })

	chroms := make([]metagenome.Chromosome, len(recs))
	for i, rec := range recs {
		chroms[i] = metagenome.Chromosome{Name: rec.Name, Length: int64(rec.Length)}
	}
	return chroms, nil
}

// FromHeader extracts chromosome lengths from ##contig=<ID=..,length=..>
// lines. Contigs without a length are skipped.
func FromHeader(header []string) ([]metagenome.Chromosome, error) {
	var chroms []metagenome.Chromosome
	for _, line := range header {
		if !strings.HasPrefix(line, "##contig=<") || !strings.HasSuffix(line, ">") {
			continue
		}
		body := line[len("##contig=<") : len(line)-1]

		var id, length string
		for _, kv := range strings.Split(body, ",") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			switch k {
			case "ID":
				id = v
			case "length":
				length = v
			}
		}
		if id == "" || length == "" {
			continue
		}
		n, err := strconv.ParseInt(length, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("contig %s: invalid length %q", id, length)
		}
		chroms = append(chroms, metagenome.Chromosome{Name: id, Length: n})
	}
	return chroms, nil
}
