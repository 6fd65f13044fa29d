package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/metagenome/internal/metagenome"
	"github.com/inodb/metagenome/internal/variant"
)

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// Run describes one persisted synchronization run.
type Run struct {
	ID          string
	Reference   string
	CreatedAt   time.Time
	Genomes     int
	Chromosomes int
	Records     int
}

// WriteRun persists a project under a new run id and returns it.
// Records are written only for synchronized chromosomes; the others are
// kept without a meta-genome length and reload as unsynchronized.
//
// The records go in first and the run row commits last, so a run is
// never visible without its records. A failed write leaves at most
// unreferenced records, which are removed on the way out.
func (s *Store) WriteRun(p *metagenome.Project, sources []FileFingerprint) (string, error) {
	runID := uuid.NewString()

	if err := s.appendRecords(runID, p); err != nil {
		_ = s.deleteRecords(runID)
		return "", err
	}
	if err := s.writeRunMeta(runID, p, sources); err != nil {
		_ = s.deleteRecords(runID)
		return "", err
	}
	return runID, nil
}

func (s *Store) writeRunMeta(runID string, p *metagenome.Project, sources []FileFingerprint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs VALUES (?, ?, ?)`,
		runID, p.Reference(), time.Now().UTC()); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, g := range p.Genomes() {
		if _, err := tx.Exec(`INSERT INTO run_genomes VALUES (?, ?, ?)`, runID, g, i); err != nil {
			return fmt.Errorf("insert genome %s: %w", g, err)
		}
	}

	for i, c := range p.Chromosomes() {
		var metaLength any
		if n, err := p.MetaLength(c.Name); err == nil {
			metaLength = n
		}
		if _, err := tx.Exec(`INSERT INTO run_chromosomes VALUES (?, ?, ?, ?, ?)`,
			runID, c.Name, i, c.Length, metaLength); err != nil {
			return fmt.Errorf("insert chromosome %s: %w", c.Name, err)
		}

		stats := p.Stats(c.Name)
		for _, o := range variant.Outcomes() {
			n := stats.Count(o)
			if n == 0 {
				continue
			}
			if _, err := tx.Exec(`INSERT INTO run_stats VALUES (?, ?, ?, ?)`,
				runID, c.Name, o.String(), n); err != nil {
				return fmt.Errorf("insert stats %s: %w", c.Name, err)
			}
		}
	}

	for _, src := range sources {
		if _, err := tx.Exec(`INSERT INTO run_sources VALUES (?, ?, ?, ?)`,
			runID, src.Path, src.Size, src.ModTime.UTC()); err != nil {
			return fmt.Errorf("insert source %s: %w", src.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func (s *Store) deleteRecords(runID string) error {
	_, err := s.db.Exec(`DELETE FROM variant_records WHERE run_id=?`, runID)
	return err
}

// appendRecords batch-inserts every record of the synchronized
// chromosomes using the Appender API.
func (s *Store) appendRecords(runID string, p *metagenome.Project) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variant_records")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, c := range p.Chromosomes() {
		if !p.Synchronized(c.Name) {
			continue
		}
		for _, g := range p.AllGenomes() {
			st, err := p.Store(g, c.Name)
			if err != nil {
				return err
			}
			for _, r := range st.Records() {
				if err := appender.AppendRow(
					runID, g, c.Name, r.Pos, r.Type.String(), r.Length,
					r.OnFirstAllele, r.OnSecondAllele,
					r.InitialReferenceOffset, r.InitialMetaGenomeOffset, r.InitialGenomeOffset,
					r.ExtraOffset, r.GapOffset,
				); err != nil {
					return fmt.Errorf("append record: %w", err)
				}
			}
		}
	}

	return appender.Flush()
}

// LoadRun rebuilds the project of a run. Chromosomes that were
// synchronized when the run was written come back synchronized and
// read-only.
func (s *Store) LoadRun(runID string) (*metagenome.Project, error) {
	var reference string
	err := s.db.QueryRow(`SELECT reference FROM runs WHERE run_id=?`, runID).Scan(&reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	genomes, err := s.queryStrings(`SELECT genome FROM run_genomes WHERE run_id=? ORDER BY ord`, runID)
	if err != nil {
		return nil, err
	}

	chroms, metaLengths, err := s.queryChromosomes(runID)
	if err != nil {
		return nil, err
	}

	p, err := metagenome.NewProject(reference, genomes, chroms)
	if err != nil {
		return nil, fmt.Errorf("rebuild project: %w", err)
	}

	if err := s.loadStats(runID, p); err != nil {
		return nil, err
	}

	records, err := s.queryRecords(runID)
	if err != nil {
		return nil, err
	}

	for _, c := range chroms {
		metaLength, ok := metaLengths[c.Name]
		if !ok {
			continue
		}
		for _, g := range p.AllGenomes() {
			st, err := p.Store(g, c.Name)
			if err != nil {
				return nil, err
			}
			if err := st.Restore(records[recordKey{g, c.Name}]); err != nil {
				return nil, err
			}
		}
		if err := p.MarkRestored(c.Name, metaLength); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		r.run_id, r.reference, r.created_at,
		(SELECT count(*) FROM run_genomes g WHERE g.run_id = r.run_id),
		(SELECT count(*) FROM run_chromosomes c WHERE c.run_id = r.run_id),
		(SELECT count(*) FROM variant_records v WHERE v.run_id = r.run_id)
		FROM runs r
		ORDER BY r.created_at DESC, r.run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Reference, &r.CreatedAt, &r.Genomes, &r.Chromosomes, &r.Records); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Sources returns the input file fingerprints recorded for a run.
func (s *Store) Sources(runID string) ([]FileFingerprint, error) {
	rows, err := s.db.Query(`SELECT path, size, mod_time FROM run_sources WHERE run_id=? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []FileFingerprint
	for rows.Next() {
		var f FileFingerprint
		if err := rows.Scan(&f.Path, &f.Size, &f.ModTime); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}

// DeleteRun removes every row of a run.
func (s *Store) DeleteRun(runID string) error {
	for _, table := range []string{"variant_records", "run_sources", "run_stats", "run_chromosomes", "run_genomes", "runs"} {
		if _, err := s.db.Exec(`DELETE FROM `+table+` WHERE run_id=?`, runID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) queryStrings(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) queryChromosomes(runID string) ([]metagenome.Chromosome, map[string]int64, error) {
	rows, err := s.db.Query(`SELECT chrom, length, meta_length FROM run_chromosomes WHERE run_id=? ORDER BY ord`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("query chromosomes: %w", err)
	}
	defer rows.Close()

	var chroms []metagenome.Chromosome
	metaLengths := make(map[string]int64)
	for rows.Next() {
		var c metagenome.Chromosome
		var metaLength sql.NullInt64
		if err := rows.Scan(&c.Name, &c.Length, &metaLength); err != nil {
			return nil, nil, fmt.Errorf("scan chromosome: %w", err)
		}
		chroms = append(chroms, c)
		if metaLength.Valid {
			metaLengths[c.Name] = metaLength.Int64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate chromosomes: %w", err)
	}
	return chroms, metaLengths, nil
}

func (s *Store) loadStats(runID string, p *metagenome.Project) error {
	rows, err := s.db.Query(`SELECT chrom, outcome, count FROM run_stats WHERE run_id=?`, runID)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chrom, name string
		var n int
		if err := rows.Scan(&chrom, &name, &n); err != nil {
			return fmt.Errorf("scan stats: %w", err)
		}
		o, ok := variant.ParseOutcome(name)
		stats := p.Stats(chrom)
		if !ok || stats == nil {
			continue
		}
		stats.AddN(o, n)
	}
	return rows.Err()
}

type recordKey struct {
	genome, chrom string
}

func (s *Store) queryRecords(runID string) (map[recordKey][]*variant.Record, error) {
	rows, err := s.db.Query(`SELECT
		genome, chrom, pos, type, length, on_first_allele, on_second_allele,
		initial_reference_offset, initial_meta_offset, initial_genome_offset,
		extra_offset, gap_offset
		FROM variant_records
		WHERE run_id=?
		ORDER BY genome, chrom, pos`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make(map[recordKey][]*variant.Record)
	for rows.Next() {
		var k recordKey
		var typ string
		r := &variant.Record{}
		if err := rows.Scan(
			&k.genome, &k.chrom, &r.Pos, &typ, &r.Length, &r.OnFirstAllele, &r.OnSecondAllele,
			&r.InitialReferenceOffset, &r.InitialMetaGenomeOffset, &r.InitialGenomeOffset,
			&r.ExtraOffset, &r.GapOffset,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		t, ok := variant.ParseType(typ)
		if !ok {
			return nil, fmt.Errorf("record %s:%d: unknown type %q", k.chrom, r.Pos, typ)
		}
		r.Type = t
		out[k] = append(out[k], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
