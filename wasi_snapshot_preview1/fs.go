// Package wasi_snapshot_preview1 is the Host Function Surface (spec.md
// §4.6): one method per preview1 filesystem function, each composing
// lookup -> rights check -> path resolution -> I/O adapter call -> ABI
// codec write, in that fixed order.
//
// Grounded on the teacher's imports/wasi_snapshot_preview1/fs.go: the same
// function-per-syscall organization, the same per-function doc-comment
// convention (parameters, result errno table, POSIX cross-reference), and
// the same newHostFunc-style name table (in functions.go). Unlike
// the teacher, every function here actually enforces internal/rights
// instead of treating rights as removed (see DESIGN.md on fdFdstatSetRights
// and the dispatchrun-wasi-go grounding for why rights came back).
package wasi_snapshot_preview1

import (
	"github.com/andrewmd5/wasihost/abi"
	"github.com/andrewmd5/wasihost/internal/fsapi"
	"github.com/andrewmd5/wasihost/internal/ioadapter"
	"github.com/andrewmd5/wasihost/internal/pathmap"
	"github.com/andrewmd5/wasihost/internal/rights"
	"github.com/andrewmd5/wasihost/internal/sys"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// Function name constants, matching the preview1 witx names exactly; a
// runtime embedder uses these as the import names it wires host functions
// under.
const (
	FdAdviseName           = "fd_advise"
	FdAllocateName         = "fd_allocate"
	FdCloseName            = "fd_close"
	FdDatasyncName         = "fd_datasync"
	FdFdstatGetName        = "fd_fdstat_get"
	FdFdstatSetFlagsName   = "fd_fdstat_set_flags"
	FdFdstatSetRightsName  = "fd_fdstat_set_rights"
	FdFilestatGetName      = "fd_filestat_get"
	FdFilestatSetSizeName  = "fd_filestat_set_size"
	FdFilestatSetTimesName = "fd_filestat_set_times"
	FdPreadName            = "fd_pread"
	FdPrestatGetName       = "fd_prestat_get"
	FdPrestatDirNameName   = "fd_prestat_dir_name"
	FdPwriteName           = "fd_pwrite"
	FdReadName             = "fd_read"
	FdReaddirName          = "fd_readdir"
	FdRenumberName         = "fd_renumber"
	FdSeekName             = "fd_seek"
	FdSyncName             = "fd_sync"
	FdTellName             = "fd_tell"
	FdWriteName            = "fd_write"

	PathCreateDirectoryName  = "path_create_directory"
	PathFilestatGetName      = "path_filestat_get"
	PathFilestatSetTimesName = "path_filestat_set_times"
	PathLinkName             = "path_link"
	PathOpenName             = "path_open"
	PathReadlinkName         = "path_readlink"
	PathRemoveDirectoryName  = "path_remove_directory"
	PathRenameName           = "path_rename"
	PathSymlinkName          = "path_symlink"
	PathUnlinkFileName       = "path_unlink_file"
)

// Host is the Host Function Surface bound to one FSContext and Path
// Mapper. One Host serves exactly one guest instance; nothing here is
// process-global (spec.md §9).
type Host struct {
	fs     *sys.FSContext
	mapper *pathmap.Mapper
	// AllowCreate/AllowDelete gate createRights/deleteRights at path_open
	// time; the embedder sets these once at construction.
	AllowCreate bool
	AllowDelete bool
}

// New builds a Host Function Surface over an already-populated FSContext
// and Path Mapper. Embedders build these through the wasihost facade
// package rather than directly, but the type is exported so tests (and
// alternative embedders) can wire it by hand.
func New(fsCtx *sys.FSContext, mapper *pathmap.Mapper, allowCreate, allowDelete bool) *Host {
	return &Host{fs: fsCtx, mapper: mapper, AllowCreate: allowCreate, AllowDelete: allowDelete}
}

// FdClose closes fd. See https://github.com/WebAssembly/WASI/blob/main/phases/snapshot/docs.md#fd_close
func (h *Host) FdClose(fd int32) wasip1.Errno {
	if errno := h.fs.Remove(fd); errno != 0 {
		return errnoOf(errno)
	}
	return wasip1.ErrnoSuccess
}

// FdDatasync flushes buffered data (not metadata) for fd to disk.
func (h *Host) FdDatasync(fd int32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdDatasync)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return errnoOf(e.Stream.Datasync())
}

// FdSync flushes buffered data and metadata for fd to disk.
func (h *Host) FdSync(fd int32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdSync)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return errnoOf(e.Stream.Sync())
}

// FdAdvise is a pure hint; this host accepts any fd with FdAdvise rights
// and does nothing with the advice (no host I/O adapter operation maps to
// posix_fadvise portably across the platforms this module targets).
func (h *Host) FdAdvise(fd int32, offset, length uint64, advice wasip1.Advice) wasip1.Errno {
	_, errno := h.lookup(fd, rights.FdAdvise)
	return errno
}

// FdAllocate forces allocation of length bytes starting at offset, growing
// the file if necessary.
func (h *Host) FdAllocate(fd int32, offset, length uint64) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdAllocate)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	want := int64(offset + length)
	st, serrno := e.Stream.Stat()
	if serrno != 0 {
		return errnoOf(serrno)
	}
	if int64(st.Size) >= want {
		return wasip1.ErrnoSuccess
	}
	return errnoOf(e.Stream.Truncate(want))
}

// FdFdstatGet writes fd's fdstat struct to resultFdstat.
func (h *Host) FdFdstatGet(mem abi.Memory, fd int32, resultFdstat uint32) wasip1.Errno {
	e, errno := h.get(fd)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return abi.WriteFdstat(mem, resultFdstat, abi.Fdstat{
		Filetype:         e.Filetype,
		Flags:            e.Flags,
		RightsBase:       e.RightsBase,
		RightsInheriting: e.RightsInheriting,
	})
}

// FdFdstatSetFlags replaces fd's fdflags.
func (h *Host) FdFdstatSetFlags(fd int32, flags wasip1.FdFlags) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdFdstatSetFlags)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	e.Flags = flags
	return errnoOf(e.Stream.SetNonblock(flags&wasip1.FdFlagsNonblock != 0))
}

// FdFdstatSetRights narrows fd's base/inheriting rights. Per spec.md §4.3
// this is monotonic-narrowing only: a request for anything beyond the
// descriptor's current rights fails with ENOTCAPABLE rather than being
// silently clamped.
func (h *Host) FdFdstatSetRights(fd int32, base, inheriting rights.Rights) wasip1.Errno {
	e, errno := h.get(fd)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	newBase, newInheriting, ok := rights.NarrowFdstatSetRights(e.RightsBase, e.RightsInheriting, base, inheriting)
	if !ok {
		return wasip1.ErrnoNotcapable
	}
	e.RightsBase, e.RightsInheriting = newBase, newInheriting
	return wasip1.ErrnoSuccess
}

// FdFilestatGet writes fd's filestat struct to resultFilestat.
func (h *Host) FdFilestatGet(mem abi.Memory, fd int32, resultFilestat uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdFilestatGet)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	st, serrno := e.Stream.Stat()
	if serrno != 0 {
		return errnoOf(serrno)
	}
	return abi.WriteFilestat(mem, resultFilestat, abi.FilestatFromStat(st))
}

// FdFilestatSetSize truncates/extends fd to size bytes.
func (h *Host) FdFilestatSetSize(fd int32, size uint64) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdFilestatSetSize)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return errnoOf(e.Stream.Truncate(int64(size)))
}

// FdFilestatSetTimes applies access/modify times to fd.
func (h *Host) FdFilestatSetTimes(fd int32, atim, mtim int64, flags wasip1.FstFlags) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdFilestatSetTimes)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	hf, ok := e.Stream.(*fsapi.HostFile)
	if !ok {
		return wasip1.ErrnoSuccess
	}
	return errnoOf(ioadapter.SetTimes(hf.File().Name(), atim, mtim, flags))
}

// FdTell returns fd's current byte offset.
func (h *Host) FdTell(mem abi.Memory, fd int32, resultOffset uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdTell)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return abi.WriteU64(mem, resultOffset, uint64(e.Offset()))
}

// FdSeek repositions fd per whence, updating its stored offset.
func (h *Host) FdSeek(mem abi.Memory, fd int32, offset int64, whence wasip1.Whence, resultNewOffset uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdSeek)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	newOff, serrno := e.Stream.Seek(offset, int(whence))
	if serrno != 0 {
		return errnoOf(serrno)
	}
	e.SetOffset(newOff)
	return abi.WriteU64(mem, resultNewOffset, uint64(newOff))
}

// FdRead reads from fd into the iovecs at iovs, writing the total byte
// count to resultSize.
func (h *Host) FdRead(mem abi.Memory, fd int32, iovs, iovsLen, resultSize uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdRead)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	n, errno := h.readv(mem, e.Stream, iovs, iovsLen, func(buf []byte) (int, wasip1.Errno) {
		nr, serrno := e.Stream.Read(buf)
		return nr, errnoOf(serrno)
	})
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	e.AddOffset(int64(n))
	return abi.WriteU32(mem, resultSize, uint32(n))
}

// FdPread reads from fd at offset into the iovecs at iovs, without
// touching fd's stored offset.
func (h *Host) FdPread(mem abi.Memory, fd int32, iovs, iovsLen uint32, offset int64, resultSize uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdRead)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	cur := offset
	n, errno := h.readv(mem, e.Stream, iovs, iovsLen, func(buf []byte) (int, wasip1.Errno) {
		nr, serrno := e.Stream.Pread(buf, cur)
		cur += int64(nr)
		return nr, errnoOf(serrno)
	})
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return abi.WriteU32(mem, resultSize, uint32(n))
}

// FdWrite writes the iovecs at iovs to fd, writing the total byte count to
// resultSize.
func (h *Host) FdWrite(mem abi.Memory, fd int32, iovs, iovsLen, resultSize uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdWrite)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	n, errno := h.writev(mem, iovs, iovsLen, func(buf []byte) (int, wasip1.Errno) {
		nw, serrno := e.Stream.Write(buf)
		return nw, errnoOf(serrno)
	})
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	e.AddOffset(int64(n))
	return abi.WriteU32(mem, resultSize, uint32(n))
}

// FdPwrite writes the iovecs at iovs to fd at offset, without touching
// fd's stored offset.
func (h *Host) FdPwrite(mem abi.Memory, fd int32, iovs, iovsLen uint32, offset int64, resultSize uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdWrite)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	cur := offset
	n, errno := h.writev(mem, iovs, iovsLen, func(buf []byte) (int, wasip1.Errno) {
		nw, serrno := e.Stream.Pwrite(buf, cur)
		cur += int64(nw)
		return nw, errnoOf(serrno)
	})
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	return abi.WriteU32(mem, resultSize, uint32(n))
}

// FdPrestatGet writes the dir_name length of a preopened directory fd to
// resultPrestat.
func (h *Host) FdPrestatGet(mem abi.Memory, fd int32, resultPrestat uint32) wasip1.Errno {
	e, errno := h.get(fd)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	if !e.IsPreopen {
		return wasip1.ErrnoBadf
	}
	return abi.WritePrestat(mem, resultPrestat, uint32(len(e.GuestPath)))
}

// FdPrestatDirName writes the guest path of preopened directory fd to path.
func (h *Host) FdPrestatDirName(mem abi.Memory, fd int32, path uint32, pathLen uint32) wasip1.Errno {
	e, errno := h.get(fd)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	if !e.IsPreopen {
		return wasip1.ErrnoBadf
	}
	name := e.GuestPath
	if uint32(len(name)) > pathLen {
		return wasip1.ErrnoNametoolong
	}
	return abi.WriteBytes(mem, path, []byte(name))
}

// FdRenumber atomically moves the descriptor at from onto to.
func (h *Host) FdRenumber(from, to int32) wasip1.Errno {
	return errnoOf(h.fs.Renumber(from, to))
}

// FdReaddir writes as many dirents as fit in buf (length bufLen) starting
// after cookie, writing the number of bytes actually written to
// resultSize. Per spec.md §4.6, cookie-based resumption must be
// exhaustive: repeated calls passing back the last entry's cookie
// eventually enumerate every entry exactly once.
func (h *Host) FdReaddir(mem abi.Memory, fd int32, buf uint32, bufLen uint32, cookie uint64, resultSize uint32) wasip1.Errno {
	e, errno := h.lookup(fd, rights.FdReaddir)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	entries, serrno := e.Stream.Readdir()
	if serrno != 0 {
		return errnoOf(serrno)
	}

	written := uint32(0)
	for _, d := range entries {
		if d.Cookie <= cookie {
			continue
		}
		nameBytes := []byte(d.Name)
		remaining := bufLen - written
		// bufused must equal bufLen whenever more entries may exist, so the
		// guest's "call again while returned == bufLen" loop terminates
		// only once fd_readdir is truly exhausted, not once an entry
		// happened to not fit.
		if remaining < abi.SizeDirent {
			written = bufLen
			break
		}
		if abi.SizeDirent+uint32(len(nameBytes)) > remaining {
			if errno := abi.WriteDirent(mem, buf+written, d.Cookie, d.Ino, uint32(len(nameBytes)), d.Filetype); errno != wasip1.ErrnoSuccess {
				return errno
			}
			written = bufLen
			break
		}
		if errno := abi.WriteDirent(mem, buf+written, d.Cookie, d.Ino, uint32(len(nameBytes)), d.Filetype); errno != wasip1.ErrnoSuccess {
			return errno
		}
		written += abi.SizeDirent
		if errno := abi.WriteBytes(mem, buf+written, nameBytes); errno != wasip1.ErrnoSuccess {
			return errno
		}
		written += uint32(len(nameBytes))
	}
	return abi.WriteU32(mem, resultSize, written)
}

// PathOpen is the central composition point of spec.md §4.6: resolve the
// guest path through the Path Mapper, derive child rights from the
// directory fd's inheriting set, perform the host open, and insert the
// resulting descriptor. fdOut is written exactly once, only on success
// (spec.md §9 Open Question), and is left untouched on any error path.
func (h *Host) PathOpen(
	mem abi.Memory,
	dirFd int32,
	dirFlags wasip1.LookupFlags,
	pathPtr, pathLen uint32,
	oflags wasip1.OFlags,
	fsRightsBase, fsRightsInheriting rights.Rights,
	fdFlags wasip1.FdFlags,
	fdOut uint32,
) wasip1.Errno {
	dirEntry, errno := h.lookup(dirFd, rights.PathOpen)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	guestRel, ok := readPath(mem, pathPtr, pathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	guestPath := joinGuest(dirEntry.GuestPath, guestRel)

	base, inheriting, ok := rights.DeriveChild(dirEntry.RightsInheriting, fsRightsBase, fsRightsInheriting)
	if !ok {
		return wasip1.ErrnoNotcapable
	}

	followLinks := dirFlags&wasip1.LookupFlagsSymlinkFollow != 0
	hostPath, _, err := h.mapper.Resolve(guestPath, followLinks)
	if err != nil {
		return mapPathErr(err)
	}

	write := fsRightsBase&rights.FdWrite != 0 || oflags&(wasip1.OFlagsCreat|wasip1.OFlagsTrunc) != 0
	read := fsRightsBase&rights.FdRead != 0
	if !read && !write {
		read = true
	}
	res, serrno := ioadapter.OpenFile(hostPath, oflags, read, write, fdFlags, followLinks)
	if serrno != 0 {
		return errnoOf(serrno)
	}

	base = rights.ForFileType(base, res.Filetype)
	inheriting = rights.ForFileType(inheriting, res.Filetype)
	base = restrictByCapabilities(base, fsapi.ProbeCapabilities(res.Stream))
	if !h.AllowCreate {
		base &^= rights.PathCreateDirectory | rights.PathCreateFile
	}
	if !h.AllowDelete {
		base &^= rights.PathUnlinkFile | rights.PathRemoveDirectory
	}

	newID, ierrno := h.fs.Insert(&sys.FileEntry{
		GuestPath:        guestPath,
		Filetype:         res.Filetype,
		Stream:           res.Stream,
		RightsBase:       base,
		RightsInheriting: inheriting,
		Flags:            fdFlags,
	})
	if ierrno != 0 {
		_ = res.Stream.Close()
		return errnoOf(ierrno)
	}
	return abi.WriteU32(mem, fdOut, uint32(newID))
}

// PathCreateDirectory creates a directory at path, relative to dirFd.
func (h *Host) PathCreateDirectory(mem abi.Memory, dirFd int32, pathPtr, pathLen uint32) wasip1.Errno {
	return h.pathOp(mem, dirFd, rights.PathCreateDirectory, pathPtr, pathLen, true, func(host string) wasip1.Errno {
		return errnoOf(ioadapter.Mkdir(host))
	})
}

// PathRemoveDirectory removes the (empty) directory at path.
func (h *Host) PathRemoveDirectory(mem abi.Memory, dirFd int32, pathPtr, pathLen uint32) wasip1.Errno {
	return h.pathOp(mem, dirFd, rights.PathRemoveDirectory, pathPtr, pathLen, true, func(host string) wasip1.Errno {
		return errnoOf(ioadapter.Rmdir(host))
	})
}

// PathUnlinkFile removes the file at path.
func (h *Host) PathUnlinkFile(mem abi.Memory, dirFd int32, pathPtr, pathLen uint32) wasip1.Errno {
	return h.pathOp(mem, dirFd, rights.PathUnlinkFile, pathPtr, pathLen, true, func(host string) wasip1.Errno {
		return errnoOf(ioadapter.Unlink(host))
	})
}

// PathSymlink creates a symlink at path pointing to the raw text at
// targetPtr/targetLen.
func (h *Host) PathSymlink(mem abi.Memory, targetPtr, targetLen uint32, dirFd int32, pathPtr, pathLen uint32) wasip1.Errno {
	target, ok := readPath(mem, targetPtr, targetLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	return h.pathOp(mem, dirFd, rights.PathSymlink, pathPtr, pathLen, true, func(host string) wasip1.Errno {
		return errnoOf(ioadapter.Symlink(target, host))
	})
}

// PathReadlink reads the raw link text at path into buf, writing the
// number of bytes written to resultSize.
func (h *Host) PathReadlink(mem abi.Memory, dirFd int32, pathPtr, pathLen uint32, buf uint32, bufLen uint32, resultSize uint32) wasip1.Errno {
	dirEntry, errno := h.lookup(dirFd, rights.PathReadlink)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	rel, ok := readPath(mem, pathPtr, pathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	hostPath, _, err := h.mapper.Resolve(joinGuest(dirEntry.GuestPath, rel), false)
	if err != nil {
		return mapPathErr(err)
	}
	tmp := make([]byte, bufLen)
	n, serrno := ioadapter.Readlink(hostPath, tmp)
	if serrno != 0 {
		return errnoOf(serrno)
	}
	if errno := abi.WriteBytes(mem, buf, tmp[:n]); errno != wasip1.ErrnoSuccess {
		return errno
	}
	return abi.WriteU32(mem, resultSize, uint32(n))
}

// PathFilestatGet writes filestat for path to resultFilestat.
func (h *Host) PathFilestatGet(mem abi.Memory, dirFd int32, lookupFlags wasip1.LookupFlags, pathPtr, pathLen uint32, resultFilestat uint32) wasip1.Errno {
	dirEntry, errno := h.lookup(dirFd, rights.PathFilestatGet)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	rel, ok := readPath(mem, pathPtr, pathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	followLinks := lookupFlags&wasip1.LookupFlagsSymlinkFollow != 0
	hostPath, _, err := h.mapper.Resolve(joinGuest(dirEntry.GuestPath, rel), followLinks)
	if err != nil {
		return mapPathErr(err)
	}
	st, serrno := ioadapter.Stat(hostPath, followLinks)
	if serrno != 0 {
		return errnoOf(serrno)
	}
	return abi.WriteFilestat(mem, resultFilestat, abi.FilestatFromStat(st))
}

// PathFilestatSetTimes applies access/modify times to path.
func (h *Host) PathFilestatSetTimes(mem abi.Memory, dirFd int32, lookupFlags wasip1.LookupFlags, pathPtr, pathLen uint32, atim, mtim int64, fstFlags wasip1.FstFlags) wasip1.Errno {
	return h.pathOp(mem, dirFd, rights.PathFilestatSetTimes, pathPtr, pathLen, lookupFlags&wasip1.LookupFlagsSymlinkFollow != 0, func(host string) wasip1.Errno {
		return errnoOf(ioadapter.SetTimes(host, atim, mtim, fstFlags))
	})
}

// PathLink creates a hard link from the old path (relative to oldDirFd) to
// the new path (relative to newDirFd).
func (h *Host) PathLink(mem abi.Memory, oldDirFd int32, oldPathPtr, oldPathLen uint32, newDirFd int32, newPathPtr, newPathLen uint32) wasip1.Errno {
	oldEntry, errno := h.lookup(oldDirFd, rights.PathLinkSource)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	newEntry, errno := h.lookup(newDirFd, rights.PathLinkTarget)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	oldRel, ok := readPath(mem, oldPathPtr, oldPathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	newRel, ok := readPath(mem, newPathPtr, newPathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	oldHost, _, err := h.mapper.Resolve(joinGuest(oldEntry.GuestPath, oldRel), true)
	if err != nil {
		return mapPathErr(err)
	}
	newHost, _, err := h.mapper.Resolve(joinGuest(newEntry.GuestPath, newRel), false)
	if err != nil {
		return mapPathErr(err)
	}
	return errnoOf(ioadapter.Link(oldHost, newHost))
}

// PathRename moves the old path (relative to oldDirFd) to the new path
// (relative to newDirFd).
func (h *Host) PathRename(mem abi.Memory, oldDirFd int32, oldPathPtr, oldPathLen uint32, newDirFd int32, newPathPtr, newPathLen uint32) wasip1.Errno {
	oldEntry, errno := h.lookup(oldDirFd, rights.PathRenameSource)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	newEntry, errno := h.lookup(newDirFd, rights.PathRenameTarget)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	oldRel, ok := readPath(mem, oldPathPtr, oldPathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	newRel, ok := readPath(mem, newPathPtr, newPathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	oldHost, _, err := h.mapper.Resolve(joinGuest(oldEntry.GuestPath, oldRel), false)
	if err != nil {
		return mapPathErr(err)
	}
	newHost, _, err := h.mapper.Resolve(joinGuest(newEntry.GuestPath, newRel), false)
	if err != nil {
		return mapPathErr(err)
	}
	return errnoOf(ioadapter.Rename(oldHost, newHost))
}

// pathOp is the shared shape of every single-path, no-result-struct
// path_* function: lookup dirFd, read+resolve path, invoke fn on the
// resolved host path.
func (h *Host) pathOp(mem abi.Memory, dirFd int32, required rights.Rights, pathPtr, pathLen uint32, followLinks bool, fn func(hostPath string) wasip1.Errno) wasip1.Errno {
	dirEntry, errno := h.lookup(dirFd, required)
	if errno != wasip1.ErrnoSuccess {
		return errno
	}
	rel, ok := readPath(mem, pathPtr, pathLen)
	if !ok {
		return wasip1.ErrnoFault
	}
	hostPath, _, err := h.mapper.Resolve(joinGuest(dirEntry.GuestPath, rel), followLinks)
	if err != nil {
		return mapPathErr(err)
	}
	return fn(hostPath)
}

func (h *Host) get(fd int32) (*sys.FileEntry, wasip1.Errno) {
	e, errno := h.fs.Get(fd)
	if errno != 0 {
		return nil, errnoOf(errno)
	}
	return e, wasip1.ErrnoSuccess
}

// lookup fetches fd and checks it carries required, per spec.md §4.3: every
// host function gates on the descriptor's base rights before touching it.
func (h *Host) lookup(fd int32, required rights.Rights) (*sys.FileEntry, wasip1.Errno) {
	e, errno := h.get(fd)
	if errno != wasip1.ErrnoSuccess {
		return nil, errno
	}
	if !e.HasRights(required) {
		return nil, wasip1.ErrnoNotcapable
	}
	return e, wasip1.ErrnoSuccess
}

func (h *Host) readv(mem abi.Memory, _ fsapi.Stream, iovs, iovsLen uint32, read func([]byte) (int, wasip1.Errno)) (int, wasip1.Errno) {
	vecs, ok := abi.ReadIOVecs(mem, iovs, iovsLen)
	if !ok {
		return 0, wasip1.ErrnoFault
	}
	total := 0
	for _, v := range vecs {
		if v.Len == 0 {
			continue
		}
		buf, ok := mem.Read(v.Ptr, v.Len)
		if !ok {
			return total, wasip1.ErrnoFault
		}
		n, errno := read(buf)
		total += n
		if errno != wasip1.ErrnoSuccess {
			return total, errno
		}
		if n < len(buf) {
			break
		}
	}
	return total, wasip1.ErrnoSuccess
}

func (h *Host) writev(mem abi.Memory, iovs, iovsLen uint32, write func([]byte) (int, wasip1.Errno)) (int, wasip1.Errno) {
	vecs, ok := abi.ReadIOVecs(mem, iovs, iovsLen)
	if !ok {
		return 0, wasip1.ErrnoFault
	}
	total := 0
	for _, v := range vecs {
		if v.Len == 0 {
			continue
		}
		buf, ok := mem.Read(v.Ptr, v.Len)
		if !ok {
			return total, wasip1.ErrnoFault
		}
		n, errno := write(buf)
		total += n
		if errno != wasip1.ErrnoSuccess {
			return total, errno
		}
		if n < len(buf) {
			break
		}
	}
	return total, wasip1.ErrnoSuccess
}

func readPath(mem abi.Memory, ptr, length uint32) (string, bool) {
	buf, ok := mem.Read(ptr, length)
	if !ok {
		return "", false
	}
	return string(buf), true
}

// restrictByCapabilities narrows base to what the underlying stream can
// actually do, probed rather than inferred from file type alone (spec.md
// §9: "query capability bits to compute rights, rather than introspecting
// a class hierarchy"). A regular file that, say, can't be synced on this
// platform loses FdSync/FdDatasync even though ForFileType would have kept
// them.
func restrictByCapabilities(base rights.Rights, caps fsapi.Capabilities) rights.Rights {
	if !caps.Readable {
		base &^= rights.FdRead
	}
	if !caps.Writable {
		base &^= rights.FdWrite | rights.FdAllocate
	}
	if !caps.Seekable {
		base &^= rights.FdSeek | rights.FdTell
	}
	if !caps.Syncable {
		base &^= rights.FdSync | rights.FdDatasync
	}
	if !caps.Truncatable {
		base &^= rights.FdFilestatSetSize
	}
	return base
}

func joinGuest(dirGuestPath, rel string) string {
	if rel == "" {
		return dirGuestPath
	}
	if dirGuestPath == "/" {
		return "/" + rel
	}
	return dirGuestPath + "/" + rel
}

// mapPathErr maps a Path Mapper error to an errno. Every error Resolve
// returns is, or wraps, ErrNotCapable, a capability failure from the
// guest's point of view.
func mapPathErr(_ error) wasip1.Errno {
	return wasip1.ErrnoNotcapable
}
