// Package sys holds the Descriptor Table and the FSContext that owns it:
// this is the FileDescriptor tuple of spec.md §3 (with its rights from the
// Rights Algebra) plus the table operations of §4.1.
//
// Grounded on the teacher's internal/sys.FSContext/FileEntry/FileTable
// (internal/sys/fs.go): same three-field descriptor-table shape (table of
// entries, rootFS-equivalent, stdio pre-insertion), reworked so every
// entry carries rights and a guest path instead of wazero's rights-free,
// guest-path-light FileEntry (wazero dropped rights enforcement; this spec
// requires it back, see DESIGN.md).
package sys

import (
	"sync"
	"syscall"

	"github.com/andrewmd5/wasihost/internal/descriptor"
	"github.com/andrewmd5/wasihost/internal/fsapi"
	"github.com/andrewmd5/wasihost/internal/rights"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// Reserved ids for stdio, matching spec.md §3.
const (
	FdStdin int32 = iota
	FdStdout
	FdStderr
	// FdPreopen is the first id available for preopened directories and
	// user-opened descriptors.
	FdPreopen
)

// FileEntry is the FileDescriptor tuple of spec.md §3.
type FileEntry struct {
	// GuestPath is the guest-visible path this descriptor was opened
	// against (the preopen's guest path for preopens).
	GuestPath string

	// Filetype is this descriptor's preview1 file type.
	Filetype wasip1.FileType

	// Stream is always non-nil; directories use it only for Readdir.
	Stream fsapi.Stream

	// IsPreopen marks a descriptor bound at startup from the
	// configuration's preopen list (or stdio), never created by path_open.
	IsPreopen bool

	// RightsBase and RightsInheriting are this descriptor's effective
	// rights, computed per spec.md §4.3.
	RightsBase       rights.Rights
	RightsInheriting rights.Rights

	// Flags is the fdflags bitmask (append/dsync/nonblock/rsync/sync).
	Flags wasip1.FdFlags

	mu     sync.Mutex
	offset int64
}

// Offset returns the descriptor's current byte offset.
func (e *FileEntry) Offset() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

// SetOffset sets the descriptor's current byte offset.
func (e *FileEntry) SetOffset(off int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset = off
}

// AddOffset advances the descriptor's offset by delta, returning the
// resulting offset; used after fd_read/fd_write transfer n bytes.
func (e *FileEntry) AddOffset(delta int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset += delta
	return e.offset
}

// HasRights reports whether this descriptor's base rights are a superset
// of required, per spec.md §4.3.
func (e *FileEntry) HasRights(required rights.Rights) bool {
	return rights.Has(e.RightsBase, required)
}

// FileTable is descriptor.Table specialized to 32-bit ids and *FileEntry,
// mirroring the teacher's FileTable type alias.
type FileTable = descriptor.Table[int32, *FileEntry]

// FSContext is the live state of one filesystem-host instance: its
// descriptor table plus the configured maximum. Multiple FSContext
// instances coexist in a process without sharing state (spec.md §9 "there
// is no global state").
type FSContext struct {
	mu      sync.Mutex
	table   FileTable
	maxOpen int
}

// NewFSContext creates an empty FSContext bounded at maxOpen descriptors.
func NewFSContext(maxOpen int) *FSContext {
	if maxOpen <= 0 {
		maxOpen = 1024
	}
	return &FSContext{maxOpen: maxOpen}
}

// Insert allocates the smallest free id for entry, failing with ENFILE if
// the configured maximum would be exceeded (spec.md §4.1).
func (c *FSContext) Insert(entry *FileEntry) (int32, syscall.Errno) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table.Len() >= c.maxOpen {
		return 0, syscall.ENFILE
	}
	id, ok := c.table.Insert(entry)
	if !ok {
		return 0, syscall.ENFILE
	}
	return id, 0
}

// InsertAt binds entry at exactly id (used for stdio and preopens, which
// must land at predictable ids) without consulting the max-open bound —
// startup wiring is trusted configuration, not guest-driven allocation.
func (c *FSContext) InsertAt(entry *FileEntry, id int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.InsertAt(entry, id)
}

// Get returns the descriptor at id.
func (c *FSContext) Get(id int32) (*FileEntry, syscall.Errno) {
	e, ok := c.table.Lookup(id)
	if !ok {
		return nil, syscall.EBADF
	}
	return e, 0
}

// GetByPath performs the linear scan spec.md §4.1 specifies for
// get_by_path, returning the first matching descriptor.
func (c *FSContext) GetByPath(guestPath string) (int32, *FileEntry, bool) {
	var (
		foundID int32
		foundE  *FileEntry
		found   bool
	)
	c.table.Range(func(id int32, e *FileEntry) bool {
		if e.GuestPath == guestPath {
			foundID, foundE, found = id, e, true
			return false
		}
		return true
	})
	return foundID, foundE, found
}

// Remove deletes the descriptor at id. Per spec.md §4.1, only regular-file
// descriptors close their backing stream as a side effect; directories and
// special devices leave the stream intact.
func (c *FSContext) Remove(id int32) syscall.Errno {
	c.mu.Lock()
	e, ok := c.table.Lookup(id)
	if !ok {
		c.mu.Unlock()
		return syscall.EBADF
	}
	c.table.Delete(id)
	c.mu.Unlock()

	if e.Filetype == wasip1.FileTypeRegularFile {
		return e.Stream.Close()
	}
	return 0
}

// Renumber moves the descriptor at from to to, closing whatever previously
// occupied to (spec.md §4.1). It is atomic: on EBADF nothing changes.
func (c *FSContext) Renumber(from, to int32) syscall.Errno {
	if to < 0 {
		return syscall.EBADF
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	fromEntry, ok := c.table.Lookup(from)
	if !ok {
		return syscall.EBADF
	}
	if toEntry, ok := c.table.Lookup(to); ok {
		if toEntry.Filetype == wasip1.FileTypeRegularFile {
			_ = toEntry.Stream.Close()
		}
	}
	c.table.Delete(from)
	if !c.table.InsertAt(fromEntry, to) {
		return syscall.EBADF
	}
	return 0
}

// Range iterates every live descriptor. See descriptor.Table.Range for the
// consistency guarantees.
func (c *FSContext) Range(fn func(id int32, e *FileEntry) bool) {
	c.table.Range(fn)
}

// Len returns the number of live descriptors.
func (c *FSContext) Len() int {
	return c.table.Len()
}

// Close tears down the context: every descriptor's Stream is closed,
// releasing whatever host resource (file, directory handle, device) backs
// it, then the table itself is reset.
func (c *FSContext) Close() error {
	var first error
	c.table.Range(func(_ int32, e *FileEntry) bool {
		if errno := e.Stream.Close(); errno != 0 && first == nil {
			first = errno
		}
		return true
	})
	c.table.Reset()
	return first
}
