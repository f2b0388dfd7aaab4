// Package table implements the record manager: fixed-width tuples laid out
// on slot-directory pages, cached through a per-table buffer pool. Page 0
// of a table's page file holds its metadata; data pages start at page 1.
package table

import (
	"errors"
	"fmt"

	"minirel/internal/bufferpool"
	"minirel/internal/pagefile"
	"minirel/internal/record"
)

const (
	metaPage      = 0
	firstDataPage = 1

	// noFreePage means no data page is known to have a free slot; the next
	// insert appends a fresh page.
	noFreePage = -1
)

var (
	ErrSlotEmpty      = errors.New("table: no record in this slot")
	ErrInvalidRID     = errors.New("table: record id out of range")
	ErrBadRecord      = errors.New("table: record buffer does not match schema")
	ErrRecordTooLarge = errors.New("table: record does not fit on a data page")
)

// Table is an open table: its schema, the buffer pool bound to its page
// file, and the cached management block.
type Table struct {
	Name   string
	Schema *record.Schema

	pool *bufferpool.Pool

	numTuples    int
	nextFreePage int
	recordSize   int
}

// Create materializes a new empty table: a one-page file whose page 0
// carries the schema and a zeroed management block.
func Create(name string, schema *record.Schema) error {
	if pageCapacity(schema.RecordSize()) < 1 {
		return fmt.Errorf("create %q: record size %d: %w",
			name, schema.RecordSize(), ErrRecordTooLarge)
	}
	if err := pagefile.Create(name); err != nil {
		return err
	}

	pool, err := bufferpool.NewPool(name, bufferpool.DefaultCapacity, bufferpool.StrategyLRU)
	if err != nil {
		return err
	}

	meta := tableMeta{
		numTuples:    0,
		nextFreePage: noFreePage,
		schema:       schema,
	}
	if err := writeMetaPage(pool, meta); err != nil {
		_ = pool.Shutdown()
		return err
	}
	return pool.Shutdown()
}

// Open binds a fresh buffer pool with default settings to the table's page
// file and loads the management block from page 0.
func Open(name string) (*Table, error) {
	return OpenWith(name, bufferpool.DefaultCapacity, bufferpool.StrategyLRU)
}

// OpenWith is Open with an explicit pool capacity and replacement strategy.
func OpenWith(name string, numFrames int, strategy bufferpool.Strategy) (*Table, error) {
	pool, err := bufferpool.NewPool(name, numFrames, strategy)
	if err != nil {
		return nil, err
	}

	h, err := pool.Pin(metaPage)
	if err != nil {
		_ = pool.Shutdown()
		return nil, err
	}
	meta, err := decodeMeta(h.Data)
	if uerr := pool.Unpin(h); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		_ = pool.Shutdown()
		return nil, err
	}

	return &Table{
		Name:         name,
		Schema:       meta.schema,
		pool:         pool,
		numTuples:    meta.numTuples,
		nextFreePage: meta.nextFreePage,
		recordSize:   meta.schema.RecordSize(),
	}, nil
}

// Close writes the management block back to page 0 and shuts the pool
// down, flushing every dirty page.
func (t *Table) Close() error {
	meta := tableMeta{
		numTuples:    t.numTuples,
		nextFreePage: t.nextFreePage,
		schema:       t.Schema,
	}
	if err := writeMetaPage(t.pool, meta); err != nil {
		return err
	}
	return t.pool.Shutdown()
}

// Drop removes the table's page file from disk.
func Drop(name string) error {
	return pagefile.Destroy(name)
}

// NumTuples returns the cached tuple counter.
func (t *Table) NumTuples() int { return t.numTuples }

// Pool exposes the table's buffer pool for IO statistics.
func (t *Table) Pool() *bufferpool.Pool { return t.pool }

// Insert places rec on the page hinted at by the management block, falling
// back to a freshly appended page when no page is known to have free slots.
// Only the hinted page is searched; free slots on other pages are not. The
// record's ID is set to its new location.
func (t *Table) Insert(rec *record.Record) error {
	if len(rec.Data) != t.recordSize {
		return fmt.Errorf("insert: buffer is %d bytes, want %d: %w",
			len(rec.Data), t.recordSize, ErrBadRecord)
	}

	for {
		if t.nextFreePage < firstDataPage {
			pageNum, err := t.appendDataPage()
			if err != nil {
				return err
			}
			t.nextFreePage = pageNum
		}

		h, err := t.pool.Pin(t.nextFreePage)
		if err != nil {
			return err
		}
		dp := newDataPage(h.Data, t.recordSize)

		slot := dp.freeSlot()
		if slot == -1 {
			// Stale hint: the page filled up since it was recorded.
			if err := t.pool.Unpin(h); err != nil {
				return err
			}
			t.nextFreePage = noFreePage
			continue
		}

		copy(dp.payload(slot), rec.Data)
		dp.setSlot(slot, true)
		dp.setSlotsUsed(dp.slotsUsed() + 1)
		full := dp.slotsUsed() == dp.capacity

		if err := t.pool.MarkDirty(h); err != nil {
			return err
		}
		rec.ID = record.RID{Page: t.nextFreePage, Slot: slot}
		if err := t.pool.Unpin(h); err != nil {
			return err
		}

		t.numTuples++
		if full {
			t.nextFreePage = noFreePage
		}
		return nil
	}
}

// Get copies the record at id into rec and stamps its ID. Reading a free
// slot fails with ErrSlotEmpty.
func (t *Table) Get(id record.RID, rec *record.Record) error {
	h, dp, err := t.pinData(id)
	if err != nil {
		return err
	}

	if !dp.slotInUse(id.Slot) {
		_ = t.pool.Unpin(h)
		return fmt.Errorf("get %s: %w", id, ErrSlotEmpty)
	}

	if len(rec.Data) != t.recordSize {
		rec.Data = make([]byte, t.recordSize)
	}
	copy(rec.Data, dp.payload(id.Slot))
	rec.ID = id

	return t.pool.Unpin(h)
}

// Update overwrites the record at rec.ID with rec's bytes. The RID stays
// stable; updating a free slot fails with ErrSlotEmpty.
func (t *Table) Update(rec *record.Record) error {
	if len(rec.Data) != t.recordSize {
		return fmt.Errorf("update: buffer is %d bytes, want %d: %w",
			len(rec.Data), t.recordSize, ErrBadRecord)
	}

	h, dp, err := t.pinData(rec.ID)
	if err != nil {
		return err
	}

	if !dp.slotInUse(rec.ID.Slot) {
		_ = t.pool.Unpin(h)
		return fmt.Errorf("update %s: %w", rec.ID, ErrSlotEmpty)
	}

	copy(dp.payload(rec.ID.Slot), rec.Data)
	if err := t.pool.MarkDirty(h); err != nil {
		return err
	}
	return t.pool.Unpin(h)
}

// Delete frees the slot at id, leaving the payload bytes in place as a
// tombstone. Deleting an already-free slot is a no-op. A page that was
// full becomes the new free-page hint.
func (t *Table) Delete(id record.RID) error {
	h, dp, err := t.pinData(id)
	if err != nil {
		return err
	}

	if !dp.slotInUse(id.Slot) {
		return t.pool.Unpin(h)
	}

	wasFull := dp.slotsUsed() == dp.capacity
	dp.setSlot(id.Slot, false)
	dp.setSlotsUsed(dp.slotsUsed() - 1)
	t.numTuples--
	if wasFull {
		t.nextFreePage = id.Page
	}

	if err := t.pool.MarkDirty(h); err != nil {
		return err
	}
	return t.pool.Unpin(h)
}

// appendDataPage grows the file by one zero page through the pool and
// returns its number. A zero page already reads as an empty slot
// directory, so only the dirty mark is needed.
func (t *Table) appendDataPage() (int, error) {
	pageNum := t.pool.File().TotalPages()
	if pageNum < firstDataPage {
		pageNum = firstDataPage
	}

	h, err := t.pool.Pin(pageNum)
	if err != nil {
		return 0, err
	}
	newDataPage(h.Data, t.recordSize).setSlotsUsed(0)
	if err := t.pool.MarkDirty(h); err != nil {
		return 0, err
	}
	if err := t.pool.Unpin(h); err != nil {
		return 0, err
	}
	return pageNum, nil
}

func (t *Table) pinData(id record.RID) (*bufferpool.Handle, dataPage, error) {
	if id.Page < firstDataPage || id.Slot < 0 || id.Slot >= pageCapacity(t.recordSize) {
		return nil, dataPage{}, fmt.Errorf("record %s: %w", id, ErrInvalidRID)
	}
	h, err := t.pool.Pin(id.Page)
	if err != nil {
		return nil, dataPage{}, err
	}
	return h, newDataPage(h.Data, t.recordSize), nil
}

// writeMetaPage persists the management block on page 0 and forces it to
// disk so table metadata survives a crash of the embedding process.
func writeMetaPage(pool *bufferpool.Pool, meta tableMeta) error {
	h, err := pool.Pin(metaPage)
	if err != nil {
		return err
	}
	if err := encodeMeta(h.Data, meta); err != nil {
		_ = pool.Unpin(h)
		return err
	}
	if err := pool.MarkDirty(h); err != nil {
		return err
	}
	if err := pool.Unpin(h); err != nil {
		return err
	}
	return pool.Force(h)
}
