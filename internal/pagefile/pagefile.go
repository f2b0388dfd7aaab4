package pagefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// 4KB page size, the unit of all block I/O
	PageSize = 4096

	FileMode0644 = 0o644
)

var (
	ErrFileNotFound   = errors.New("pagefile: file not found")
	ErrFileExists     = errors.New("pagefile: file already exists")
	ErrPageOutOfRange = errors.New("pagefile: page number out of range")
	ErrWrongBufSize   = errors.New("pagefile: buffer size != PageSize")
)

// File is an open page file: a flat sequence of PageSize blocks with no
// header, addressed by zero-based page numbers. It performs no caching;
// higher layers route their I/O through a buffer pool.
type File struct {
	name       string
	f          *os.File
	totalPages int
}

// Create creates a page file containing exactly one zero-filled page.
func Create(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, FileMode0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("create page file %q: %w", name, ErrFileExists)
		}
		return fmt.Errorf("create page file %q: %w", name, err)
	}

	zero := make([]byte, PageSize)
	if _, err := f.Write(zero); err != nil {
		_ = f.Close()
		return fmt.Errorf("write initial page: %w", err)
	}
	return f.Close()
}

// Destroy removes the page file from disk.
func Destroy(name string) error {
	if err := os.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("destroy page file %q: %w", name, ErrFileNotFound)
		}
		return fmt.Errorf("destroy page file %q: %w", name, err)
	}
	return nil
}

// Open opens an existing page file for read/write. It fails if the file
// does not exist.
func Open(name string) (*File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, FileMode0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open page file %q: %w", name, ErrFileNotFound)
		}
		return nil, fmt.Errorf("open page file %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat page file: %w", err)
	}

	return &File{
		name:       name,
		f:          f,
		totalPages: int(info.Size() / PageSize),
	}, nil
}

func (pf *File) Close() error {
	return pf.f.Close()
}

func (pf *File) Name() string { return pf.name }

// TotalPages returns the number of pages currently in the file.
func (pf *File) TotalPages() int { return pf.totalPages }

// ReadBlock reads page n into buf. A short read (page inside the file's
// page count but the tail truncated) is zero-filled so callers always see
// a full page.
func (pf *File) ReadBlock(n int, buf []byte) error {
	if len(buf) != PageSize {
		return ErrWrongBufSize
	}
	if n < 0 || n >= pf.totalPages {
		return fmt.Errorf("read block %d of %d: %w", n, pf.totalPages, ErrPageOutOfRange)
	}

	read, err := pf.f.ReadAt(buf, int64(n)*PageSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read block %d: %w", n, err)
	}
	for i := read; i < PageSize; i++ {
		buf[i] = 0
	}
	return nil
}

// WriteBlock writes buf to page n. Writes never grow the file; use
// EnsureCapacity or AppendEmptyBlock first.
func (pf *File) WriteBlock(n int, buf []byte) error {
	if len(buf) != PageSize {
		return ErrWrongBufSize
	}
	if n < 0 || n >= pf.totalPages {
		return fmt.Errorf("write block %d of %d: %w", n, pf.totalPages, ErrPageOutOfRange)
	}

	written, err := pf.f.WriteAt(buf, int64(n)*PageSize)
	if err != nil {
		return fmt.Errorf("write block %d: %w", n, err)
	}
	if written != PageSize {
		return io.ErrShortWrite
	}
	return nil
}

// AppendEmptyBlock grows the file by one zero-filled page.
func (pf *File) AppendEmptyBlock() error {
	zero := make([]byte, PageSize)
	if _, err := pf.f.WriteAt(zero, int64(pf.totalPages)*PageSize); err != nil {
		return fmt.Errorf("append block %d: %w", pf.totalPages, err)
	}
	pf.totalPages++
	return nil
}

// EnsureCapacity appends empty pages until the file holds at least k pages.
func (pf *File) EnsureCapacity(k int) error {
	for pf.totalPages < k {
		if err := pf.AppendEmptyBlock(); err != nil {
			return err
		}
	}
	return nil
}
