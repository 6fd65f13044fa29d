// Package output provides tab-delimited writers for synchronized records,
// coordinate translations and run summaries.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/variant"
)

// RecordWriter writes variant records with their offsets in tab-delimited
// format.
type RecordWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewRecordWriter creates a new tab-delimited record writer.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Genome",
			"Chrom",
			"Pos",
			"Type",
			"Length",
			"Alleles",
			"Reference_offset",
			"Meta_offset",
			"Genome_offset",
			"Extra_offset",
			"Gap_offset",
			"Native_start",
			"Meta_start",
			"Meta_end",
		},
	}
}

// WriteHeader writes the header line.
func (rw *RecordWriter) WriteHeader() error {
	_, err := rw.w.WriteString(strings.Join(rw.columns, "\t") + "\n")
	return err
}

// Write writes a single record of genome on chrom.
func (rw *RecordWriter) Write(genome, chrom string, r *variant.Record) error {
	values := []string{
		genome,
		chrom,
		itoa(r.Pos),
		r.Type.String(),
		itoa(r.Length),
		alleles(r),
		itoa(r.InitialReferenceOffset),
		itoa(r.InitialMetaGenomeOffset),
		itoa(r.InitialGenomeOffset),
		itoa(r.ExtraOffset),
		itoa(r.GapOffset),
		itoa(r.NativeStart()),
		itoa(r.MetaStart()),
		itoa(r.MetaEnd()),
	}

	_, err := rw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (rw *RecordWriter) Flush() error {
	return rw.w.Flush()
}

// TranslationWriter writes coordinate translations in tab-delimited format.
type TranslationWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTranslationWriter creates a new tab-delimited translation writer.
func NewTranslationWriter(w io.Writer) *TranslationWriter {
	return &TranslationWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Chrom",
			"From",
			"To",
			"Pos",
			"Translated",
			"Status",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TranslationWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one translated position. from and to name the coordinate
// systems, e.g. a genome name, the reference name, or "meta".
func (tw *TranslationWriter) Write(chrom, from, to string, pos int64, got metagenome.Position) error {
	values := []string{
		chrom,
		from,
		to,
		itoa(pos),
		itoa(got.Pos),
		got.Status.String(),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TranslationWriter) Flush() error {
	return tw.w.Flush()
}

func alleles(r *variant.Record) string {
	switch {
	case r.OnFirstAllele && r.OnSecondAllele:
		return "1|1"
	case r.OnFirstAllele:
		return "1|0"
	case r.OnSecondAllele:
		return "0|1"
	}
	return "-"
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
