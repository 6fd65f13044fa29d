package store

import (
	"fmt"

	"github.com/inodb/metagenome/internal/variant"
)

// Cursor is the transient, forward-only state of one synchronization sweep
// over a store. Records visited or inserted through the cursor only become
// visible in the store on Commit.
type Cursor struct {
	store *Store
	src   []*variant.Record
	next  int
	cur   *variant.Record // working copy of src[next]
	prev  *variant.Record
	out   []*variant.Record
	done  bool
}

// BeginSweep starts a sweep. A store can be swept once; a second call after
// Commit, or while another cursor is open, fails.
func (s *Store) BeginSweep() (*Cursor, error) {
	if s.synchronized {
		return nil, fmt.Errorf("sweep %s/%s: %w", s.genome, s.chrom, ErrAlreadySynchronized)
	}
	if s.sweeping {
		return nil, fmt.Errorf("sweep %s/%s: %w", s.genome, s.chrom, ErrSweepInProgress)
	}
	s.sweeping = true
	return &Cursor{
		store: s,
		src:   s.records,
		out:   make([]*variant.Record, 0, len(s.records)),
	}, nil
}

// Store returns the store being swept.
func (c *Cursor) Store() *Store { return c.store }

// At returns the sweep's copy of the store's record at pos, or nil.
// Records positioned before pos that were never visited are an error.
func (c *Cursor) At(pos int64) (*variant.Record, error) {
	if c.next >= len(c.src) {
		return nil, nil
	}
	r := c.src[c.next]
	switch {
	case r.Pos == pos:
		if c.cur == nil {
			cp := *r
			c.cur = &cp
		}
		return c.cur, nil
	case r.Pos < pos:
		return nil, fmt.Errorf("%s/%s record at %d skipped by sweep at %d: %w",
			c.store.genome, c.store.chrom, r.Pos, pos, ErrIncompleteSweep)
	}
	return nil, nil
}

// Previous returns the last record visited or inserted in this sweep, or
// nil at the start.
func (c *Cursor) Previous() *variant.Record { return c.prev }

// Advance consumes the record returned by At.
func (c *Cursor) Advance() {
	if c.cur == nil {
		cp := *c.src[c.next]
		c.cur = &cp
	}
	c.next++
	c.out = append(c.out, c.cur)
	c.prev = c.cur
	c.cur = nil
}

// Insert adds a synthesized record at the current sweep position.
func (c *Cursor) Insert(r *variant.Record) {
	c.out = append(c.out, r)
	c.prev = r
}

// Remaining returns the number of store records not yet visited.
func (c *Cursor) Remaining() int { return len(c.src) - c.next }

// Commit publishes the swept records and marks the store synchronized.
func (c *Cursor) Commit() error {
	if c.done {
		return fmt.Errorf("commit %s/%s: %w", c.store.genome, c.store.chrom, ErrAlreadySynchronized)
	}
	if c.next != len(c.src) {
		c.Abort()
		return fmt.Errorf("commit %s/%s: %d of %d records visited: %w",
			c.store.genome, c.store.chrom, c.next, len(c.src), ErrIncompleteSweep)
	}
	c.done = true
	c.store.records = c.out
	c.store.synchronized = true
	c.store.sweeping = false
	c.store.buildLayout()
	return nil
}

// Abort drops the sweep. The store keeps its original records, is not
// marked synchronized, and may be swept again.
func (c *Cursor) Abort() {
	if c.done {
		return
	}
	c.done = true
	c.store.sweeping = false
}
