package wasi_snapshot_preview1

import (
	"syscall"

	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// errnoOf maps the syscall.Errno values the Host I/O Adapter and Stream
// implementations return to their preview1 equivalents. This is the single
// boundary between the "native error" world (internal/*) and the "wire
// errno" world (this package), matching the pattern the teacher's
// errno.go establishes with toErrno/ToResultErrno, but mapping from
// syscall.Errno rather than wazero's internal sys.Errno.
func errnoOf(err syscall.Errno) wasip1.Errno {
	switch err {
	case 0:
		return wasip1.ErrnoSuccess
	case syscall.EACCES:
		return wasip1.ErrnoAcces
	case syscall.EAGAIN:
		return wasip1.ErrnoAgain
	case syscall.EBADF:
		return wasip1.ErrnoBadf
	case syscall.EBUSY:
		return wasip1.ErrnoBusy
	case syscall.EEXIST:
		return wasip1.ErrnoExist
	case syscall.EFAULT:
		return wasip1.ErrnoFault
	case syscall.EFBIG:
		return wasip1.ErrnoFbig
	case syscall.EINTR:
		return wasip1.ErrnoIntr
	case syscall.EINVAL:
		return wasip1.ErrnoInval
	case syscall.EIO:
		return wasip1.ErrnoIo
	case syscall.EISDIR:
		return wasip1.ErrnoIsdir
	case syscall.ELOOP:
		return wasip1.ErrnoLoop
	case syscall.EMFILE:
		return wasip1.ErrnoMfile
	case syscall.EMLINK:
		return wasip1.ErrnoMlink
	case syscall.ENAMETOOLONG:
		return wasip1.ErrnoNametoolong
	case syscall.ENFILE:
		return wasip1.ErrnoNfile
	case syscall.ENODEV:
		return wasip1.ErrnoNodev
	case syscall.ENOENT:
		return wasip1.ErrnoNoent
	case syscall.ENOLCK:
		return wasip1.ErrnoNolck
	case syscall.ENOMEM:
		return wasip1.ErrnoNomem
	case syscall.ENOSPC:
		return wasip1.ErrnoNospc
	case syscall.ENOSYS:
		return wasip1.ErrnoNosys
	case syscall.ENOTDIR:
		return wasip1.ErrnoNotdir
	case syscall.ENOTEMPTY:
		return wasip1.ErrnoNotempty
	case syscall.ENOTSUP:
		return wasip1.ErrnoNotsup
	case syscall.ENXIO:
		return wasip1.ErrnoNxio
	case syscall.EPERM:
		return wasip1.ErrnoPerm
	case syscall.EPIPE:
		return wasip1.ErrnoPipe
	case syscall.EROFS:
		return wasip1.ErrnoRofs
	case syscall.ESPIPE:
		return wasip1.ErrnoSpipe
	case syscall.EXDEV:
		return wasip1.ErrnoXdev
	default:
		return wasip1.ErrnoIo
	}
}
