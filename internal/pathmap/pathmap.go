// Package pathmap implements the Path Mapper (spec.md §4.2): the ordered
// set of guest-prefix -> host-prefix bindings that every path_* operation
// resolves through, plus the symlink/traversal containment check that
// keeps a resolved host path inside its preopen root.
//
// Grounded on the preopen-as-prefix-table shape used across the pack's
// WASI hosts (achille-roussel-wazero's syscallfs.go treats preopens as a
// slice of (guest path, host FS) pairs; the teacher's cmd/wazero/compositefs.go
// resolves a guest path by longest matching registered prefix) but containment
// re-verification after each symlink hop is this module's own, since none
// of the retrieved files implement it explicitly.
package pathmap

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

// AccessMode mirrors a preopen's configured access mode.
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessReadWrite
)

// ErrNotCapable is returned whenever a resolved host path would escape its
// preopen root, whether via ".." or a symlink. Callers translate this to
// ErrnoNotcapable.
var ErrNotCapable = errors.New("pathmap: path escapes preopen root")

// ErrDevReserved is returned by AddMapping when the guest prefix is /dev or
// a subpath of it.
var ErrDevReserved = errors.New("pathmap: /dev is reserved and cannot be bound")

// Mapping is one (guest-prefix, host-prefix) binding.
type Mapping struct {
	GuestPrefix string
	HostPrefix  string
	Access      AccessMode
}

// Mapper holds the ordered set of preopen mappings and resolves guest paths
// against them.
type Mapper struct {
	hostRoot string
	mappings []Mapping
}

// New creates a Mapper with no mappings; SetRoot/AddMapping populate it.
func New() *Mapper {
	return &Mapper{}
}

// SetRoot records the host root directory every mapping is ultimately
// validated to remain under: Resolve re-checks containment against it in
// addition to the matched mapping's own host prefix.
func (m *Mapper) SetRoot(hostDir string) {
	m.hostRoot = filepathClean(hostDir)
}

// HostRoot returns the configured host root.
func (m *Mapper) HostRoot() string { return m.hostRoot }

// AddMapping registers a guest-prefix -> host-prefix binding. Both must be
// absolute. The guest prefix is normalized to start with "/" and not end
// with "/" (except when it is exactly "/"). /dev and its subpaths are
// reserved (spec.md §3 "the prefix /dev is reserved and cannot be bound").
func (m *Mapper) AddMapping(guestPrefix, hostPrefix string, access AccessMode) error {
	if !path.IsAbs(guestPrefix) {
		return fmt.Errorf("pathmap: guest prefix %q must be absolute", guestPrefix)
	}
	if !path.IsAbs(hostPrefix) {
		return fmt.Errorf("pathmap: host prefix %q must be absolute", hostPrefix)
	}
	guestPrefix = normalizeGuestPrefix(guestPrefix)
	if guestPrefix == "/dev" || strings.HasPrefix(guestPrefix, "/dev/") {
		return ErrDevReserved
	}
	hostPrefix = filepathClean(hostPrefix)

	// Longest-prefix-first ordering makes map_to_host's scan simple.
	m.mappings = append(m.mappings, Mapping{GuestPrefix: guestPrefix, HostPrefix: hostPrefix, Access: access})
	sort.SliceStable(m.mappings, func(i, j int) bool {
		return len(m.mappings[i].GuestPrefix) > len(m.mappings[j].GuestPrefix)
	})
	return nil
}

// RemoveMapping removes the mapping for guestPrefix, if any, reporting
// whether one was found.
func (m *Mapper) RemoveMapping(guestPrefix string) bool {
	guestPrefix = normalizeGuestPrefix(guestPrefix)
	for i, mm := range m.mappings {
		if mm.GuestPrefix == guestPrefix {
			m.mappings = append(m.mappings[:i], m.mappings[i+1:]...)
			return true
		}
	}
	return false
}

// Mappings returns a snapshot of the registered mappings, longest-prefix
// first.
func (m *Mapper) Mappings() []Mapping {
	out := make([]Mapping, len(m.mappings))
	copy(out, m.mappings)
	return out
}

// Resolve finds the mapping whose guest-prefix is the longest prefix of
// guestPath, splices in the host-prefix, collapses "." / ".." components,
// and verifies the result stays inside the matched preopen root. followLinks
// selects SYMLINK_FOLLOW semantics for the final component (spec.md §4.2
// "Lookup flags").
func (m *Mapper) Resolve(guestPath string, followLinks bool) (hostPath string, matched Mapping, err error) {
	if !path.IsAbs(guestPath) {
		guestPath = "/" + guestPath
	}

	// The mapping is matched and spliced on the path as given; "." and ".."
	// are collapsed only after the host prefix is spliced in, so a ".."
	// that climbs above the matched preopen lands outside its host prefix
	// and fails the containment check below.
	var best *Mapping
	for i := range m.mappings {
		mm := &m.mappings[i]
		if mm.GuestPrefix == "/" || guestPath == mm.GuestPrefix || strings.HasPrefix(guestPath, mm.GuestPrefix+"/") {
			best = mm
			break // m.mappings is sorted longest-prefix-first
		}
	}
	if best == nil {
		return "", Mapping{}, fmt.Errorf("pathmap: no preopen mapping covers %q: %w", guestPath, ErrNotCapable)
	}

	rel := strings.TrimPrefix(guestPath, best.GuestPrefix)
	rel = strings.TrimPrefix(rel, "/")
	host := filepathClean(joinHost(best.HostPrefix, rel))

	if err := m.checkContainment(host, best.HostPrefix, followLinks); err != nil {
		return "", Mapping{}, err
	}
	// The configured host root is a second, outer sandbox boundary beyond
	// the matched preopen's own prefix (spec.md §6 "host_root_directory"):
	// even a correctly bound preopen cannot be used to escape it.
	if m.hostRoot != "" {
		if err := m.checkContainment(host, m.hostRoot, followLinks); err != nil {
			return "", Mapping{}, err
		}
	}
	return host, *best, nil
}

// checkContainment verifies host is a descendant of root after resolving
// symlinks component by component, re-checking containment after every
// hop to avoid the TOCTOU window spec.md §4.2 calls out. When followLinks
// is false, only the containment of the parent directory chain is checked
// (the final component itself is not dereferenced).
func (m *Mapper) checkContainment(host, root string, followLinks bool) error {
	rootReal, err := realPath(root)
	if err != nil {
		// The preopen root itself must exist; if it doesn't, that's a
		// configuration problem surfaced by the caller, not a capability
		// failure.
		rootReal = root
	}

	dir, base := path.Split(host)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "/"
	}

	resolvedDir, err := resolveSymlinkChain(dir, rootReal)
	if err != nil {
		return err
	}
	full := joinHost(resolvedDir, base)

	if followLinks {
		if real, err := realPath(full); err == nil {
			full = real
		}
	}

	if !isDescendant(full, rootReal) && full != rootReal {
		return ErrNotCapable
	}
	return nil
}

// resolveSymlinkChain walks dir component by component from root,
// dereferencing symlinks and re-verifying containment after each hop.
func resolveSymlinkChain(dir, root string) (string, error) {
	if !isDescendant(dir, root) && dir != root {
		// The directory doesn't lexically start under root at all: no
		// amount of symlink resolution legitimizes that, reject fast.
		return "", ErrNotCapable
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(dir, root), "/")
	if rel == "" {
		return root, nil
	}
	cur := root
	for _, comp := range strings.Split(rel, "/") {
		if comp == "" {
			continue
		}
		cur = joinHost(cur, comp)
		if real, err := realPath(cur); err == nil {
			cur = real
		}
		if !isDescendant(cur, root) && cur != root {
			return "", ErrNotCapable
		}
	}
	return cur, nil
}

func realPath(p string) (string, error) {
	target, err := readlink(p)
	if err != nil {
		// Not a symlink (or doesn't exist yet, e.g. about to be created):
		// that's fine, use the lexical path as-is.
		return p, nil
	}
	if !path.IsAbs(target) {
		target = joinHost(path.Dir(p), target)
	}
	return filepathClean(target), nil
}

func isDescendant(p, root string) bool {
	p = filepathClean(p)
	root = filepathClean(root)
	return strings.HasPrefix(p, root+string(os.PathSeparator)) || p == root
}

func joinHost(prefix, rest string) string {
	if rest == "" {
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + rest
}

func filepathClean(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func normalizeGuestPrefix(p string) string {
	p = path.Clean(p)
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
