package table

import (
	"errors"
	"fmt"

	"minirel/internal/record"
)

// ErrScanExhausted signals the end of a sequential scan. It is distinct
// from ErrSlotEmpty so callers can tell "scan done" from "free slot".
var ErrScanExhausted = errors.New("table: scan exhausted")

// Predicate filters scanned records. Eval yields a BOOL value; any other
// result type is a predicate error.
type Predicate interface {
	Eval(r *record.Record, s *record.Schema) (record.Value, error)
}

// Scan iterates a table's records in page-then-slot order, pinning one
// page at a time. A nil predicate matches everything.
type Scan struct {
	tbl  *Table
	pred Predicate
	page int
	slot int
}

// NewScan starts a sequential scan over the table.
func (t *Table) NewScan(pred Predicate) *Scan {
	return &Scan{
		tbl:  t,
		pred: pred,
		page: firstDataPage,
		slot: 0,
	}
}

// Next copies the next matching record into out and stamps its RID. It
// returns ErrScanExhausted once every data page has been visited, and
// propagates predicate evaluation errors unchanged.
func (sc *Scan) Next(out *record.Record) error {
	t := sc.tbl
	if t == nil || sc.page < firstDataPage {
		return ErrScanExhausted
	}
	capacity := pageCapacity(t.recordSize)

	for {
		if sc.page >= t.pool.File().TotalPages() {
			return ErrScanExhausted
		}

		h, err := t.pool.Pin(sc.page)
		if err != nil {
			return err
		}
		dp := newDataPage(h.Data, t.recordSize)

		for sc.slot < capacity {
			slot := sc.slot
			sc.slot++
			if !dp.slotInUse(slot) {
				continue
			}

			if len(out.Data) != t.recordSize {
				out.Data = make([]byte, t.recordSize)
			}
			copy(out.Data, dp.payload(slot))
			out.ID = record.RID{Page: sc.page, Slot: slot}

			match, err := sc.matches(out)
			if err != nil {
				_ = t.pool.Unpin(h)
				return err
			}
			if match {
				return t.pool.Unpin(h)
			}
		}

		if err := t.pool.Unpin(h); err != nil {
			return err
		}
		sc.slot = 0
		sc.page++
	}
}

// Close releases the scan state. A closed scan reports ErrScanExhausted.
func (sc *Scan) Close() {
	sc.tbl = nil
	sc.page = noFreePage
}

func (sc *Scan) matches(r *record.Record) (bool, error) {
	if sc.pred == nil {
		return true, nil
	}
	v, err := sc.pred.Eval(r, sc.tbl.Schema)
	if err != nil {
		return false, err
	}
	if v.Type != record.TypeBool {
		return false, fmt.Errorf("predicate yielded %s: %w", v.Type, record.ErrTypeMismatch)
	}
	return v.Bool, nil
}
