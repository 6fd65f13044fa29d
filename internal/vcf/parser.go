package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Number of fixed columns before FORMAT.
const fixedColumns = 8

var gzipMagic = []byte{0x1f, 0x8b}

// Parser reads data lines from a plain or gzipped VCF stream.
type Parser struct {
	r       *bufio.Reader
	closers []io.Closer // innermost first
	line    int
	header  []string
	samples []string
}

// NewParser opens the VCF at path, or stdin for "-". Gzip input is
// recognized by its magic bytes, not the file name.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf: %w", err)
	}
	p := &Parser{closers: []io.Closer{f}}
	if err := p.init(f); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser over r. The caller owns r.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{}
	if err := p.init(r); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Parser) init(r io.Reader) error {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read vcf: %w", err)
	}
	if string(magic) == string(gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		p.closers = append([]io.Closer{zr}, p.closers...)
		br = bufio.NewReader(zr)
	}
	p.r = br
	return p.readHeader()
}

// readLine returns the next line without its terminator. ok is false at
// the end of input.
func (p *Parser) readLine() (line string, ok bool, err error) {
	line, err = p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if err != nil && line == "" {
		return "", false, nil
	}
	p.line++
	return strings.TrimRight(line, "\r\n"), true, nil
}

func (p *Parser) readHeader() error {
	for {
		line, ok, err := p.readLine()
		if err != nil {
			return fmt.Errorf("read vcf header: %w", err)
		}
		if !ok {
			return &ParseError{Line: p.line, Message: "no #CHROM header line found"}
		}

		switch {
		case strings.HasPrefix(line, "##"):
			p.header = append(p.header, line)
		case strings.HasPrefix(line, "#CHROM"):
			p.header = append(p.header, line)
			if cols := strings.Split(line, "\t"); len(cols) > fixedColumns+1 {
				p.samples = cols[fixedColumns+1:]
			}
			return nil
		default:
			return &ParseError{Line: p.line, Message: "expected #CHROM header line"}
		}
	}
}

// Next returns the next data line, or nil, nil at the end of input.
// Blank lines are skipped.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, ok, err := p.readLine()
		if err != nil {
			return nil, fmt.Errorf("read vcf line %d: %w", p.line+1, err)
		}
		if !ok {
			return nil, nil
		}
		if line != "" {
			return p.parseLine(line)
		}
	}
}

func (p *Parser) parseLine(line string) (*Variant, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < fixedColumns {
		return nil, p.errorf("expected at least %d columns, found %d", fixedColumns, len(cols))
	}

	pos, err := strconv.ParseInt(cols[1], 10, 64)
	if err != nil {
		return nil, p.errorf("invalid position: %s", cols[1])
	}
	var qual float64
	if cols[5] != "." {
		qual, _ = strconv.ParseFloat(cols[5], 64)
	}

	v := &Variant{
		Chrom:  cols[0],
		Pos:    pos,
		ID:     cols[2],
		Ref:    cols[3],
		Alt:    cols[4],
		Qual:   qual,
		Filter: cols[6],
		Info:   parseInfo(cols[7]),
	}
	if len(cols) > fixedColumns {
		v.Format = strings.Split(cols[fixedColumns], ":")
		v.Samples = cols[fixedColumns+1:]
	}
	if len(v.Samples) != len(p.samples) {
		return nil, p.errorf("expected %d sample columns, found %d", len(p.samples), len(v.Samples))
	}
	return v, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.line, Message: fmt.Sprintf(format, args...)}
}

// parseInfo splits an INFO column. Flags map to true.
func parseInfo(info string) map[string]interface{} {
	out := make(map[string]interface{})
	if info == "." || info == "" {
		return out
	}
	for _, field := range strings.Split(info, ";") {
		if key, value, ok := strings.Cut(field, "="); ok {
			out[key] = value
		} else {
			out[key] = true
		}
	}
	return out
}

// Header returns the meta lines and the #CHROM line.
func (p *Parser) Header() []string { return p.header }

// SampleNames returns the sample columns of the #CHROM line, or nil.
func (p *Parser) SampleNames() []string { return p.samples }

// LineNumber returns the number of the last line read.
func (p *Parser) LineNumber() int { return p.line }

// Close releases the gzip stream and the file opened by NewParser.
func (p *Parser) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// ParseError is a malformed line in a VCF stream.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
