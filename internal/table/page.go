package table

import (
	"minirel/internal/bx"
	"minirel/internal/pagefile"
)

// Data page layout (pages >= 1):
//
//	+------------------+ 0
//	| slotsUsed  int32 |
//	+------------------+ 4
//	| slot directory   | one byte per slot, 0 = free, 1 = used
//	+------------------+ 4+M
//	| payloads         | slot i at 4+M+i*R, R bytes each
//	+------------------+
//
// with M = (PageSize - 4) / (R + 1).
const (
	slotsUsedOff = 0
	slotDirOff   = 4

	slotFree byte = 0
	slotUsed byte = 1
)

// pageCapacity is the number of record slots a data page holds for records
// of width recordSize.
func pageCapacity(recordSize int) int {
	return (pagefile.PageSize - slotDirOff) / (recordSize + 1)
}

// dataPage wraps the bytes of one pinned data page. It is a view, valid
// only while the page stays pinned.
type dataPage struct {
	buf        []byte
	recordSize int
	capacity   int
}

func newDataPage(buf []byte, recordSize int) dataPage {
	return dataPage{
		buf:        buf,
		recordSize: recordSize,
		capacity:   pageCapacity(recordSize),
	}
}

func (p dataPage) slotsUsed() int {
	return int(bx.I32At(p.buf, slotsUsedOff))
}

func (p dataPage) setSlotsUsed(n int) {
	bx.PutI32At(p.buf, slotsUsedOff, int32(n))
}

func (p dataPage) slotInUse(slot int) bool {
	return p.buf[slotDirOff+slot] == slotUsed
}

func (p dataPage) setSlot(slot int, used bool) {
	if used {
		p.buf[slotDirOff+slot] = slotUsed
	} else {
		p.buf[slotDirOff+slot] = slotFree
	}
}

// freeSlot returns the first free slot index, or -1 when the page is full.
func (p dataPage) freeSlot() int {
	for i := range p.capacity {
		if p.buf[slotDirOff+i] == slotFree {
			return i
		}
	}
	return -1
}

// payload returns the fixed-width byte window of slot i.
func (p dataPage) payload(slot int) []byte {
	start := slotDirOff + p.capacity + slot*p.recordSize
	return p.buf[start : start+p.recordSize]
}
