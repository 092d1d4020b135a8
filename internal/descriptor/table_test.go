package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewmd5/wasihost/internal/sys"
)

func TestFileTable(t *testing.T) {
	table := new(sys.FileTable)

	assert.Equal(t, 0, table.Len())

	v0 := &sys.FileEntry{GuestPath: "1"}
	v1 := &sys.FileEntry{GuestPath: "2"}
	v2 := &sys.FileEntry{GuestPath: "3"}

	k0, ok := table.Insert(v0)
	require.True(t, ok)
	k1, ok := table.Insert(v1)
	require.True(t, ok)
	k2, ok := table.Insert(v2)
	require.True(t, ok)

	// Inserting at an invalid id fails.
	ok = table.InsertAt(v2, -1)
	require.False(t, ok)

	for _, lookup := range []struct {
		key int32
		val *sys.FileEntry
	}{
		{key: k0, val: v0},
		{key: k1, val: v1},
		{key: k2, val: v2},
	} {
		v, ok := table.Lookup(lookup.key)
		require.True(t, ok, "value not found for key %v", lookup.key)
		assert.Equal(t, lookup.val.GuestPath, v.GuestPath)
	}

	assert.Equal(t, 3, table.Len())

	found := map[int32]bool{}
	table.Range(func(k int32, v *sys.FileEntry) bool {
		switch k {
		case k0:
			assert.Equal(t, v0.GuestPath, v.GuestPath)
		case k1:
			assert.Equal(t, v1.GuestPath, v.GuestPath)
		case k2:
			assert.Equal(t, v2.GuestPath, v.GuestPath)
		}
		found[k] = true
		return true
	})
	assert.True(t, found[k0] && found[k1] && found[k2])

	for i, key := range []int32{k1, k0, k2} {
		table.Delete(key)
		_, ok := table.Lookup(key)
		assert.False(t, ok, "item found after deletion of %v", key)
		assert.Equal(t, 3-(i+1), table.Len())
	}
}

func BenchmarkFileTableInsert(b *testing.B) {
	table := new(sys.FileTable)
	entry := new(sys.FileEntry)

	for i := 0; i < b.N; i++ {
		table.Insert(entry)

		if (i % 65536) == 0 {
			table.Reset() // avoid unbounded growth across iterations
		}
	}
}

func BenchmarkFileTableLookup(b *testing.B) {
	const sentinel = "42"
	const numFiles = 65536
	table := new(sys.FileTable)
	files := make([]int32, numFiles)
	entry := &sys.FileEntry{GuestPath: sentinel}

	var ok bool
	for i := range files {
		files[i], ok = table.Insert(entry)
		if !ok {
			b.Fatal("unexpected failure to insert")
		}
	}

	var f *sys.FileEntry
	for i := 0; i < b.N; i++ {
		f, _ = table.Lookup(files[i%numFiles])
	}
	if f.GuestPath != sentinel {
		b.Error("wrong file returned by lookup")
	}
}
