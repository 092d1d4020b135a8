//go:build unix

package pathmap

import "golang.org/x/sys/unix"

// readlink is the unix-specific symlink read used by realPath, backed by
// golang.org/x/sys/unix rather than os.Readlink so the containment check
// observes the same raw syscall the host kernel would apply, matching the
// low-level-syscall style the pack's unix-facing repos use (ground:
// pgavlin-warp, wrd233-ECE566-nfs both depend on golang.org/x/sys).
func readlink(p string) (string, error) {
	buf := make([]byte, 1024)
	for {
		n, err := unix.Readlink(p, buf)
		if err != nil {
			return "", err
		}
		if n < len(buf) {
			return string(buf[:n]), nil
		}
		buf = make([]byte, len(buf)*2)
	}
}
