// Package rights implements the preview1 capability (rights) algebra:
// computing the initial rights set for a newly bound descriptor, narrowing
// rights on inheritance through path_open, and enforcing the
// subset-of-base-rights check every host function must perform before it
// touches a descriptor.
//
// Grounded on the rights-checking shape of dispatchrun-wasi-go's
// FileTable.lookupFD/PathOpen (subset check against RightsBase, ENOTCAPABLE
// on failure, AND-narrowing on inherit) reimplemented against this
// module's own descriptor and errno types.
package rights

import "github.com/andrewmd5/wasihost/internal/wasip1"

// Rights is the preview1 64-bit rights bitmask.
type Rights = uint64

// Named bits, per the preview1 witx `rights` enum.
const (
	FdDatasync Rights = 1 << iota
	FdRead
	FdSeek
	FdFdstatSetFlags
	FdSync
	FdTell
	FdWrite
	FdAdvise
	FdAllocate
	PathCreateDirectory
	PathCreateFile
	PathLinkSource
	PathLinkTarget
	PathOpen
	FdReaddir
	PathReadlink
	PathRenameSource
	PathRenameTarget
	PathFilestatGet
	PathFilestatSetSize
	PathFilestatSetTimes
	FdFilestatGet
	FdFilestatSetSize
	FdFilestatSetTimes
	PathSymlink
	PathRemoveDirectory
	PathUnlinkFile
	PollFdReadwrite
	SockShutdown
	SockAccept
)

// All is the union of every named right; used to mask caller-supplied
// bitmasks down to the bits preview1 actually defines.
const All = FdDatasync | FdRead | FdSeek | FdFdstatSetFlags | FdSync | FdTell |
	FdWrite | FdAdvise | FdAllocate | PathCreateDirectory | PathCreateFile |
	PathLinkSource | PathLinkTarget | PathOpen | FdReaddir | PathReadlink |
	PathRenameSource | PathRenameTarget | PathFilestatGet | PathFilestatSetSize |
	PathFilestatSetTimes | FdFilestatGet | FdFilestatSetSize | FdFilestatSetTimes |
	PathSymlink | PathRemoveDirectory | PathUnlinkFile | PollFdReadwrite |
	SockShutdown | SockAccept

// DirectoryRights are the rights meaningful on a directory descriptor:
// every path_* operation plus the attribute/readdir rights. Exported so
// an embedder can build a path_open request scoped to "whatever the
// resulting descriptor's type turns out to allow" without hand-listing
// every bit.
const DirectoryRights = PathCreateDirectory | PathCreateFile | PathLinkSource |
	PathLinkTarget | PathOpen | FdReaddir | PathReadlink | PathRenameSource |
	PathRenameTarget | PathFilestatGet | PathFilestatSetSize | PathFilestatSetTimes |
	FdFilestatGet | FdFilestatSetTimes | PathSymlink | PathRemoveDirectory |
	PathUnlinkFile | PollFdReadwrite

// FileRights are the rights meaningful on a regular-file descriptor.
const FileRights = FdDatasync | FdRead | FdSeek | FdFdstatSetFlags | FdSync |
	FdTell | FdWrite | FdAdvise | FdAllocate | FdFilestatGet | FdFilestatSetSize |
	FdFilestatSetTimes | PollFdReadwrite

const directoryRights = DirectoryRights
const fileRights = FileRights

// writeRights are stripped when a descriptor is read-only or the embedder
// disabled creation/deletion.
const (
	writeRights  = FdDatasync | FdWrite | FdAllocate | FdFilestatSetSize | FdFilestatSetTimes
	createRights = PathCreateDirectory | PathCreateFile
	deleteRights = PathUnlinkFile | PathRemoveDirectory
)

// AccessMode mirrors the descriptor's access-mode field (§3 FileDescriptor).
type AccessMode int

const (
	AccessNone AccessMode = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

// ComputeInitial returns the base rights set for a freshly bound descriptor
// of the given file type, narrowed by the configured access mode and the
// allow-create/allow-delete embedder flags. See spec.md §4.3.
func ComputeInitial(fileType wasip1.FileType, access AccessMode, allowCreate, allowDelete bool) Rights {
	var r Rights
	switch fileType {
	case wasip1.FileTypeDirectory:
		r = directoryRights
	default:
		r = fileRights
	}
	if access == AccessNone || access == AccessRead {
		r &^= writeRights
	}
	if !allowCreate {
		r &^= createRights
	}
	if !allowDelete {
		r &^= deleteRights
	}
	return r
}

// ComputeInheriting returns the inheriting-rights set for a directory
// descriptor: the union of every file- and directory-meaningful right,
// narrowed by access mode and the allow-create/allow-delete embedder
// flags, the same way ComputeInitial narrows a single file type's rights.
// A directory's own base rights (from ComputeInitial) cover what can be
// done to the directory itself; its inheriting rights bound what
// path_open may hand to anything opened through it, which may turn out to
// be a file or another directory. See spec.md §4.3.
func ComputeInheriting(access AccessMode, allowCreate, allowDelete bool) Rights {
	r := directoryRights | fileRights
	if access == AccessNone || access == AccessRead {
		r &^= writeRights
	}
	if !allowCreate {
		r &^= createRights
	}
	if !allowDelete {
		r &^= deleteRights
	}
	return r
}

// Restrict returns the intersection of a computed rights set with an
// externally supplied restriction (e.g. a caller-requested narrower base).
func Restrict(computed, restriction Rights) Rights {
	return computed & restriction
}

// DeriveChild computes the base/inheriting rights pair for a descriptor
// opened through path_open against a parent whose inheriting-rights set is
// parentInheriting. It returns ok=false (mapped by callers to ENOTCAPABLE)
// if the request asked for anything the parent does not permit — the
// narrowing must be explicit, never silent. See spec.md §4.3.
func DeriveChild(parentInheriting, requestedBase, requestedInheriting Rights) (base, inheriting Rights, ok bool) {
	requestedBase &= All
	requestedInheriting &= All
	if requestedBase&^parentInheriting != 0 {
		return 0, 0, false
	}
	if requestedInheriting&^parentInheriting != 0 {
		return 0, 0, false
	}
	return requestedBase & parentInheriting, requestedInheriting & parentInheriting, true
}

// Has reports whether base contains every bit set in required.
func Has(base, required Rights) bool {
	return base&required == required
}

// NarrowFdstatSetRights validates a fd_fdstat_set_rights request: the new
// base/inheriting sets must each be a subset of the descriptor's current
// values, never a superset (monotonic narrowing only). See spec.md §4.3.
func NarrowFdstatSetRights(currentBase, currentInheriting, newBase, newInheriting Rights) (Rights, Rights, bool) {
	newBase &= All
	newInheriting &= All
	if newBase&^currentBase != 0 {
		return 0, 0, false
	}
	if newInheriting&^currentInheriting != 0 {
		return 0, 0, false
	}
	return newBase, newInheriting, true
}

// ForFileType restricts a rights set to those meaningful for fileType, used
// by path_open to narrow the granted rights to the type of the object it
// actually opened, regardless of what the caller requested.
func ForFileType(r Rights, fileType wasip1.FileType) Rights {
	if fileType == wasip1.FileTypeDirectory {
		return r & directoryRights
	}
	return r & fileRights
}
