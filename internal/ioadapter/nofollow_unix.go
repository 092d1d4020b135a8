//go:build unix

package ioadapter

import "syscall"

// noFollowFlag is OR'd into the host open flags whenever the caller asked
// for the final path component not to be dereferenced, matching the
// unix.O_NOFOLLOW use in dispatchrun-wasi-go's system.go openat call.
const noFollowFlag = syscall.O_NOFOLLOW
