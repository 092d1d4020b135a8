package wasi_snapshot_preview1

import (
	"github.com/andrewmd5/wasihost/abi"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// HostFunc is the generic shape every preview1 import resolves to: a slice
// of raw u32/u64 parameters (already widened to uint64, the way a
// WebAssembly runtime's value stack stores i32 operands) and the guest's
// linear memory, returning the single i32 errno result every preview1
// function produces. A runtime embedder's binding layer is responsible
// for declaring the correct i32/i64 value types per function and widening
// narrower operands before calling in.
//
// Grounded on the teacher's newHostFunc(name, fn, valueTypes, paramNames)
// table (imports/wasi_snapshot_preview1/fs.go): same "one function per
// witx signature, keyed by name" shape, generalized away from wazero's
// api.Module/api.ValueType so it carries no runtime-specific types.
type HostFunc func(mem abi.Memory, params []uint64) wasip1.Errno

// Functions returns the complete name -> HostFunc table for this Host,
// keyed by the witx function names declared above. A runtime embedder
// iterates this to register every preview1 filesystem import.
func (h *Host) Functions() map[string]HostFunc {
	return map[string]HostFunc{
		FdAdviseName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdAdvise(int32(p[0]), p[1], p[2], wasip1.Advice(p[3]))
		},
		FdAllocateName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdAllocate(int32(p[0]), p[1], p[2])
		},
		FdCloseName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdClose(int32(p[0]))
		},
		FdDatasyncName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdDatasync(int32(p[0]))
		},
		FdFdstatGetName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdFdstatGet(mem, int32(p[0]), uint32(p[1]))
		},
		FdFdstatSetFlagsName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdFdstatSetFlags(int32(p[0]), wasip1.FdFlags(p[1]))
		},
		FdFdstatSetRightsName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdFdstatSetRights(int32(p[0]), p[1], p[2])
		},
		FdFilestatGetName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdFilestatGet(mem, int32(p[0]), uint32(p[1]))
		},
		FdFilestatSetSizeName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdFilestatSetSize(int32(p[0]), p[1])
		},
		FdFilestatSetTimesName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdFilestatSetTimes(int32(p[0]), int64(p[1]), int64(p[2]), wasip1.FstFlags(p[3]))
		},
		FdPreadName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdPread(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), int64(p[3]), uint32(p[4]))
		},
		FdPrestatGetName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdPrestatGet(mem, int32(p[0]), uint32(p[1]))
		},
		FdPrestatDirNameName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdPrestatDirName(mem, int32(p[0]), uint32(p[1]), uint32(p[2]))
		},
		FdPwriteName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdPwrite(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), int64(p[3]), uint32(p[4]))
		},
		FdReadName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdRead(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), uint32(p[3]))
		},
		FdReaddirName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdReaddir(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), p[3], uint32(p[4]))
		},
		FdRenumberName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdRenumber(int32(p[0]), int32(p[1]))
		},
		FdSeekName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdSeek(mem, int32(p[0]), int64(p[1]), wasip1.Whence(p[2]), uint32(p[3]))
		},
		FdSyncName: func(_ abi.Memory, p []uint64) wasip1.Errno {
			return h.FdSync(int32(p[0]))
		},
		FdTellName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdTell(mem, int32(p[0]), uint32(p[1]))
		},
		FdWriteName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.FdWrite(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), uint32(p[3]))
		},
		PathCreateDirectoryName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathCreateDirectory(mem, int32(p[0]), uint32(p[1]), uint32(p[2]))
		},
		PathFilestatGetName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathFilestatGet(mem, int32(p[0]), wasip1.LookupFlags(p[1]), uint32(p[2]), uint32(p[3]), uint32(p[4]))
		},
		PathFilestatSetTimesName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathFilestatSetTimes(mem, int32(p[0]), wasip1.LookupFlags(p[1]), uint32(p[2]), uint32(p[3]), int64(p[4]), int64(p[5]), wasip1.FstFlags(p[6]))
		},
		PathLinkName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathLink(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), int32(p[3]), uint32(p[4]), uint32(p[5]))
		},
		PathOpenName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathOpen(mem, int32(p[0]), wasip1.LookupFlags(p[1]), uint32(p[2]), uint32(p[3]), wasip1.OFlags(p[4]), p[5], p[6], wasip1.FdFlags(p[7]), uint32(p[8]))
		},
		PathReadlinkName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathReadlink(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), uint32(p[3]), uint32(p[4]), uint32(p[5]))
		},
		PathRemoveDirectoryName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathRemoveDirectory(mem, int32(p[0]), uint32(p[1]), uint32(p[2]))
		},
		PathRenameName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathRename(mem, int32(p[0]), uint32(p[1]), uint32(p[2]), int32(p[3]), uint32(p[4]), uint32(p[5]))
		},
		PathSymlinkName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathSymlink(mem, uint32(p[0]), uint32(p[1]), int32(p[2]), uint32(p[3]), uint32(p[4]))
		},
		PathUnlinkFileName: func(mem abi.Memory, p []uint64) wasip1.Errno {
			return h.PathUnlinkFile(mem, int32(p[0]), uint32(p[1]), uint32(p[2]))
		},
	}
}
