// Package abi is the ABI Codec (spec.md §4.5): typed, bit-exact pack/unpack
// of the preview1 wire structs (iovec, ciovec, fdstat, filestat, prestat,
// dirent) into guest linear memory. Every write bounds-checks its target
// region first and returns EFAULT rather than panicking, exactly the
// contract spec.md §4.5 and §6 require of the runtime/codec boundary.
//
// Grounded on the byte-layout documentation in the teacher's
// imports/wasi_snapshot_preview1/fs.go doc comments (fdFdstatGetFn's
// worked byte-array example, fdFilestatGetFn's field table) — the layouts
// here are the same, reimplemented against this module's own Memory
// contract instead of wazero's api.Memory.
package abi

import (
	"encoding/binary"

	"github.com/andrewmd5/wasihost/internal/fsapi"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// Memory is the bounds-checked linear-memory accessor this codec and the
// Host Function Surface consume. Any WebAssembly runtime embedder
// satisfies this with a thin adapter over its own memory type (e.g.
// wazero's api.Memory, wasmtime-go's Memory, or a plain []byte in tests).
type Memory interface {
	// Read returns a byte slice backed by guest memory at [offset,
	// offset+byteCount), or ok=false if that range is out of bounds.
	Read(offset, byteCount uint32) (buf []byte, ok bool)
	// Size returns the current size of linear memory in bytes.
	Size() uint32
}

// Sizes of the fixed-layout structs, in bytes.
const (
	SizeIOVec    = 8
	SizeFdstat   = 24
	SizeFilestat = 64
	SizePrestat  = 8
	SizeDirent   = 24
)

// IOVec is the preview1 `iovec`/`ciovec` struct: a guest pointer and byte
// length. Both share the same wire layout; the distinction (const vs
// mutable) is only in how a caller uses the bytes.
type IOVec struct {
	Ptr uint32
	Len uint32
}

// ReadIOVecs unpacks count consecutive iovec/ciovec structs starting at
// offset.
func ReadIOVecs(mem Memory, offset, count uint32) ([]IOVec, bool) {
	out := make([]IOVec, count)
	for i := uint32(0); i < count; i++ {
		buf, ok := mem.Read(offset+i*SizeIOVec, SizeIOVec)
		if !ok {
			return nil, false
		}
		out[i] = IOVec{
			Ptr: binary.LittleEndian.Uint32(buf[0:4]),
			Len: binary.LittleEndian.Uint32(buf[4:8]),
		}
	}
	return out, true
}

// Fdstat is the preview1 `fdstat` struct.
type Fdstat struct {
	Filetype         wasip1.FileType
	Flags            wasip1.FdFlags
	RightsBase       uint64
	RightsInheriting uint64
}

// WriteFdstat packs a Fdstat at offset:
//
//	byte 0:    fs_filetype (u8)
//	byte 1:    padding
//	bytes 2-3: fs_flags (u16)
//	bytes 4-7: padding
//	bytes 8-15:  fs_rights_base (u64)
//	bytes 16-23: fs_rights_inheriting (u64)
func WriteFdstat(mem Memory, offset uint32, v Fdstat) wasip1.Errno {
	buf, ok := mem.Read(offset, SizeFdstat)
	if !ok {
		return wasip1.ErrnoFault
	}
	for i := range buf {
		buf[i] = 0
	}
	buf[0] = v.Filetype
	binary.LittleEndian.PutUint16(buf[2:4], v.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], v.RightsBase)
	binary.LittleEndian.PutUint64(buf[16:24], v.RightsInheriting)
	return wasip1.ErrnoSuccess
}

// ReadFdstat unpacks a Fdstat from offset; used only by tests verifying
// the round-trip invariant of spec.md §8.
func ReadFdstat(mem Memory, offset uint32) (Fdstat, bool) {
	buf, ok := mem.Read(offset, SizeFdstat)
	if !ok {
		return Fdstat{}, false
	}
	return Fdstat{
		Filetype:         buf[0],
		Flags:            binary.LittleEndian.Uint16(buf[2:4]),
		RightsBase:       binary.LittleEndian.Uint64(buf[8:16]),
		RightsInheriting: binary.LittleEndian.Uint64(buf[16:24]),
	}, true
}

// Filestat is the preview1 `filestat` struct.
type Filestat struct {
	Dev      uint64
	Ino      uint64
	Filetype wasip1.FileType
	Nlink    uint64
	Size     uint64
	Atim     int64
	Mtim     int64
	Ctim     int64
}

// FilestatFromStat builds a Filestat from the fsapi-level Stat_t the Host
// I/O Adapter returns.
func FilestatFromStat(st fsapi.Stat_t) Filestat {
	return Filestat{
		Dev: st.Dev, Ino: st.Ino, Filetype: st.Filetype, Nlink: st.Nlink,
		Size: st.Size, Atim: st.Atim, Mtim: st.Mtim, Ctim: st.Ctim,
	}
}

// WriteFilestat packs a Filestat at offset:
//
//	0-7:   dev (u64)
//	8-15:  ino (u64)
//	16:    filetype (u8) + 7 pad bytes
//	24-31: nlink (u64)
//	32-39: size (u64)
//	40-47: atim (i64)
//	48-55: mtim (i64)
//	56-63: ctim (i64)
func WriteFilestat(mem Memory, offset uint32, v Filestat) wasip1.Errno {
	buf, ok := mem.Read(offset, SizeFilestat)
	if !ok {
		return wasip1.ErrnoFault
	}
	for i := range buf {
		buf[i] = 0
	}
	binary.LittleEndian.PutUint64(buf[0:8], v.Dev)
	binary.LittleEndian.PutUint64(buf[8:16], v.Ino)
	buf[16] = v.Filetype
	binary.LittleEndian.PutUint64(buf[24:32], v.Nlink)
	binary.LittleEndian.PutUint64(buf[32:40], v.Size)
	binary.LittleEndian.PutUint64(buf[40:48], uint64(v.Atim))
	binary.LittleEndian.PutUint64(buf[48:56], uint64(v.Mtim))
	binary.LittleEndian.PutUint64(buf[56:64], uint64(v.Ctim))
	return wasip1.ErrnoSuccess
}

// ReadFilestat unpacks a Filestat from offset.
func ReadFilestat(mem Memory, offset uint32) (Filestat, bool) {
	buf, ok := mem.Read(offset, SizeFilestat)
	if !ok {
		return Filestat{}, false
	}
	return Filestat{
		Dev:      binary.LittleEndian.Uint64(buf[0:8]),
		Ino:      binary.LittleEndian.Uint64(buf[8:16]),
		Filetype: buf[16],
		Nlink:    binary.LittleEndian.Uint64(buf[24:32]),
		Size:     binary.LittleEndian.Uint64(buf[32:40]),
		Atim:     int64(binary.LittleEndian.Uint64(buf[40:48])),
		Mtim:     int64(binary.LittleEndian.Uint64(buf[48:56])),
		Ctim:     int64(binary.LittleEndian.Uint64(buf[56:64])),
	}, true
}

// WritePrestat packs a `prestat` struct (tagged union; preview1 defines
// only the "dir" variant):
//
//	0: tag (u8), 1-3: padding, 4-7: dir_name_len (u32)
func WritePrestat(mem Memory, offset uint32, dirNameLen uint32) wasip1.Errno {
	buf, ok := mem.Read(offset, SizePrestat)
	if !ok {
		return wasip1.ErrnoFault
	}
	buf[0] = wasip1.PreopenTypeDir
	buf[1], buf[2], buf[3] = 0, 0, 0
	binary.LittleEndian.PutUint32(buf[4:8], dirNameLen)
	return wasip1.ErrnoSuccess
}

// WriteDirent packs one `dirent` record at offset:
//
//	0-7:   d_next (u64, the dircookie to resume after this entry)
//	8-15:  d_ino (u64)
//	16-19: d_namlen (u32, length of the name bytes that follow)
//	20:    d_type (u8) + 3 pad bytes
func WriteDirent(mem Memory, offset uint32, next, ino uint64, namlen uint32, filetype wasip1.FileType) wasip1.Errno {
	buf, ok := mem.Read(offset, SizeDirent)
	if !ok {
		return wasip1.ErrnoFault
	}
	binary.LittleEndian.PutUint64(buf[0:8], next)
	binary.LittleEndian.PutUint64(buf[8:16], ino)
	binary.LittleEndian.PutUint32(buf[16:20], namlen)
	buf[20] = filetype
	buf[21], buf[22], buf[23] = 0, 0, 0
	return wasip1.ErrnoSuccess
}

// WriteBytes copies data into guest memory at offset, bounds-checked.
func WriteBytes(mem Memory, offset uint32, data []byte) wasip1.Errno {
	if len(data) == 0 {
		return wasip1.ErrnoSuccess
	}
	buf, ok := mem.Read(offset, uint32(len(data)))
	if !ok {
		return wasip1.ErrnoFault
	}
	copy(buf, data)
	return wasip1.ErrnoSuccess
}

// WriteU32 writes a little-endian u32 at offset.
func WriteU32(mem Memory, offset uint32, v uint32) wasip1.Errno {
	buf, ok := mem.Read(offset, 4)
	if !ok {
		return wasip1.ErrnoFault
	}
	binary.LittleEndian.PutUint32(buf, v)
	return wasip1.ErrnoSuccess
}

// WriteU64 writes a little-endian u64 at offset.
func WriteU64(mem Memory, offset uint32, v uint64) wasip1.Errno {
	buf, ok := mem.Read(offset, 8)
	if !ok {
		return wasip1.ErrnoFault
	}
	binary.LittleEndian.PutUint64(buf, v)
	return wasip1.ErrnoSuccess
}
