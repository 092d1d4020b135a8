package abi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewmd5/wasihost/abi"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// sliceMemory is a minimal abi.Memory backed by a plain byte slice, used to
// test the codec without a real WebAssembly runtime.
type sliceMemory []byte

func (m sliceMemory) Size() uint32 { return uint32(len(m)) }

func (m sliceMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m)) {
		return nil, false
	}
	return m[offset:end], true
}

func TestFdstatRoundTrip(t *testing.T) {
	mem := make(sliceMemory, 64)
	want := abi.Fdstat{
		Filetype:         wasip1.FileTypeRegularFile,
		Flags:            wasip1.FdFlagsAppend | wasip1.FdFlagsSync,
		RightsBase:       0x1234,
		RightsInheriting: 0x5678,
	}
	require.Equal(t, wasip1.ErrnoSuccess, abi.WriteFdstat(mem, 8, want))

	got, ok := abi.ReadFdstat(mem, 8)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFdstatOutOfBoundsIsFault(t *testing.T) {
	mem := make(sliceMemory, 16)
	errno := abi.WriteFdstat(mem, 8, abi.Fdstat{})
	assert.Equal(t, wasip1.ErrnoFault, errno)
}

func TestFilestatRoundTrip(t *testing.T) {
	mem := make(sliceMemory, 128)
	want := abi.Filestat{
		Dev: 1, Ino: 42, Filetype: wasip1.FileTypeDirectory, Nlink: 2,
		Size: 4096, Atim: 111, Mtim: 222, Ctim: 333,
	}
	require.Equal(t, wasip1.ErrnoSuccess, abi.WriteFilestat(mem, 0, want))

	got, ok := abi.ReadFilestat(mem, 0)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestWriteFilestatOutOfBounds(t *testing.T) {
	mem := make(sliceMemory, 32)
	assert.Equal(t, wasip1.ErrnoFault, abi.WriteFilestat(mem, 0, abi.Filestat{}))
}

func TestWritePrestat(t *testing.T) {
	mem := make(sliceMemory, 16)
	require.Equal(t, wasip1.ErrnoSuccess, abi.WritePrestat(mem, 0, 7))
	assert.Equal(t, wasip1.PreopenTypeDir, mem[0])
	assert.EqualValues(t, 7, mem[4]|mem[5]<<8|mem[6]<<16|mem[7]<<24)
}

func TestWriteDirent(t *testing.T) {
	mem := make(sliceMemory, abi.SizeDirent)
	errno := abi.WriteDirent(mem, 0, 99, 7, 5, wasip1.FileTypeRegularFile)
	require.Equal(t, wasip1.ErrnoSuccess, errno)
	assert.Equal(t, byte(wasip1.FileTypeRegularFile), mem[20])
}

func TestReadIOVecs(t *testing.T) {
	mem := make(sliceMemory, 32)
	require.Equal(t, wasip1.ErrnoSuccess, abi.WriteU32(mem, 0, 100))
	require.Equal(t, wasip1.ErrnoSuccess, abi.WriteU32(mem, 4, 10))
	require.Equal(t, wasip1.ErrnoSuccess, abi.WriteU32(mem, 8, 200))
	require.Equal(t, wasip1.ErrnoSuccess, abi.WriteU32(mem, 12, 20))

	vecs, ok := abi.ReadIOVecs(mem, 0, 2)
	require.True(t, ok)
	assert.Equal(t, []abi.IOVec{{Ptr: 100, Len: 10}, {Ptr: 200, Len: 20}}, vecs)

	_, ok = abi.ReadIOVecs(mem, 28, 2)
	assert.False(t, ok)
}

func TestWriteBytesOutOfBounds(t *testing.T) {
	mem := make(sliceMemory, 4)
	assert.Equal(t, wasip1.ErrnoFault, abi.WriteBytes(mem, 0, []byte("hello")))
}
