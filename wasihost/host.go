// Package wasihost is the embedder-facing facade (spec.md §6.1): it wires
// a Config's preopens and stdio streams into a sys.FSContext and
// pathmap.Mapper, builds the wasi_snapshot_preview1.Host Function Surface
// over them, and exposes that surface through Functions, whose own
// Functions method yields the name->HostFunc table a WebAssembly runtime
// registers as the `wasi_snapshot_preview1` import module.
//
// Grounded on the teacher's top-level wasi_snapshot_preview1/wasi.go
// (a thin `Instantiate(ctx, r) error` entry point over the function table
// defined in imports/wasi_snapshot_preview1/fs.go) and on
// wippyai-wasm-runtime's construction-time config validation + zap logging
// convention for the ambient stack (see SPEC_FULL.md §6.2).
package wasihost

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/andrewmd5/wasihost/internal/fsapi"
	"github.com/andrewmd5/wasihost/internal/pathmap"
	"github.com/andrewmd5/wasihost/internal/rights"
	"github.com/andrewmd5/wasihost/internal/sys"
	"github.com/andrewmd5/wasihost/internal/wasip1"
	wasip1fn "github.com/andrewmd5/wasihost/wasi_snapshot_preview1"
)

// Preopen is one guest-prefix -> host-directory binding the embedder wants
// available to the guest at startup.
type Preopen struct {
	GuestPath string
	HostPath  string
	Access    pathmap.AccessMode
}

// Config is the embedder-supplied construction configuration for a Host.
// Every field not set takes the documented default, following the
// zero-value-is-usable convention the teacher applies to its own
// config-carrying structs.
type Config struct {
	// HostRootDirectory is the absolute host path every preopen is
	// ultimately validated to remain under (spec.md §6): mandatory, and
	// must exist as a directory at construction time.
	HostRootDirectory string

	// Preopens lists the guest<->host directory bindings available to the
	// guest. At least one is required.
	Preopens []Preopen

	// MaxOpenFiles bounds the live descriptor count (spec.md §4.1). Zero
	// means 1024.
	MaxOpenFiles int

	// AllowFileCreation and AllowFileDeletion gate the createRights/
	// deleteRights bits computed for every descriptor (spec.md §4.3).
	// Both default to true; an embedder sandboxing a guest sets either
	// to false explicitly.
	AllowFileCreation *bool
	AllowFileDeletion *bool

	// Stdin/Stdout/Stderr default to os.Stdin/os.Stdout/os.Stderr when left
	// zero. To give the guest a discarding stream instead, pass io.Discard
	// (Stdout/Stderr) or strings.NewReader("") (Stdin) explicitly.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives Debug-level entries for every non-success errno passed
	// to LogResult, and Error-level entries for construction failures. A
	// nil Logger defaults to zap.NewNop().
	Logger *zap.Logger
}

func (c Config) allowCreate() bool {
	if c.AllowFileCreation == nil {
		return true
	}
	return *c.AllowFileCreation
}

func (c Config) allowDelete() bool {
	if c.AllowFileDeletion == nil {
		return true
	}
	return *c.AllowFileDeletion
}

// Host is one fully-wired filesystem host instance: its descriptor table,
// path mapper, and Host Function Surface. Create with New; tear down with
// Close.
type Host struct {
	cfg    Config
	fs     *sys.FSContext
	mapper *pathmap.Mapper
	fns    *wasip1fn.Host
	log    *zap.Logger
}

// New validates cfg, binds stdio and every configured preopen, and returns
// a ready-to-use Host. Construction failures are logged at Error level
// before being returned, per SPEC_FULL.md §6.2.
func New(cfg Config) (*Host, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.HostRootDirectory == "" {
		err := fmt.Errorf("wasihost: HostRootDirectory is required")
		log.Error("construction failed", zap.Error(err))
		return nil, err
	}
	rootInfo, err := os.Stat(cfg.HostRootDirectory)
	if err != nil {
		log.Error("construction failed", zap.Error(err), zap.String("hostRootDirectory", cfg.HostRootDirectory))
		return nil, fmt.Errorf("wasihost: host root directory %q: %w", cfg.HostRootDirectory, err)
	}
	if !rootInfo.IsDir() {
		err := fmt.Errorf("wasihost: host root directory %q is not a directory", cfg.HostRootDirectory)
		log.Error("construction failed", zap.Error(err))
		return nil, err
	}
	if len(cfg.Preopens) == 0 {
		err := fmt.Errorf("wasihost: at least one preopen is required")
		log.Error("construction failed", zap.Error(err))
		return nil, err
	}
	if cfg.MaxOpenFiles < 0 {
		err := fmt.Errorf("wasihost: MaxOpenFiles must not be negative, got %d", cfg.MaxOpenFiles)
		log.Error("construction failed", zap.Error(err))
		return nil, err
	}

	mapper := pathmap.New()
	mapper.SetRoot(cfg.HostRootDirectory)
	for _, p := range cfg.Preopens {
		if err := mapper.AddMapping(p.GuestPath, p.HostPath, p.Access); err != nil {
			log.Error("construction failed", zap.Error(err), zap.String("guestPath", p.GuestPath))
			return nil, err
		}
	}

	fsCtx := sys.NewFSContext(cfg.MaxOpenFiles)

	stdin, stdout, stderr := cfg.Stdin, cfg.Stdout, cfg.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	bindStdio(fsCtx, stdin, stdout, stderr)

	nextID := sys.FdPreopen
	for _, p := range cfg.Preopens {
		dir, err := os.Open(p.HostPath)
		if err != nil {
			log.Error("construction failed", zap.Error(err), zap.String("hostPath", p.HostPath))
			return nil, fmt.Errorf("wasihost: opening preopen %q: %w", p.HostPath, err)
		}
		access := accessModeOf(p.Access)
		base := rights.ComputeInitial(wasip1.FileTypeDirectory, access, cfg.allowCreate(), cfg.allowDelete())
		inheriting := rights.ComputeInheriting(access, cfg.allowCreate(), cfg.allowDelete())
		fsCtx.InsertAt(&sys.FileEntry{
			GuestPath:        p.GuestPath,
			Filetype:         wasip1.FileTypeDirectory,
			Stream:           fsapi.NewHostFile(dir, true),
			IsPreopen:        true,
			RightsBase:       base,
			RightsInheriting: inheriting,
		}, nextID)
		nextID++
	}

	h := &Host{
		cfg:    cfg,
		fs:     fsCtx,
		mapper: mapper,
		fns:    wasip1fn.New(fsCtx, mapper, cfg.allowCreate(), cfg.allowDelete()),
		log:    log,
	}
	return h, nil
}

func accessModeOf(m pathmap.AccessMode) rights.AccessMode {
	switch m {
	case pathmap.AccessRead:
		return rights.AccessRead
	case pathmap.AccessWrite:
		return rights.AccessWrite
	default:
		return rights.AccessReadWrite
	}
}

func bindStdio(fsCtx *sys.FSContext, stdin io.Reader, stdout, stderr io.Writer) {
	const stdioRights = rights.FdSeek | rights.FdTell | rights.FdFilestatGet | rights.PollFdReadwrite
	fsCtx.InsertAt(&sys.FileEntry{
		GuestPath:  "/dev/stdin",
		Filetype:   wasip1.FileTypeCharacterDevice,
		Stream:     fsapi.NewStdinStream(stdin),
		IsPreopen:  true,
		RightsBase: rights.FdRead | stdioRights,
	}, sys.FdStdin)
	fsCtx.InsertAt(&sys.FileEntry{
		GuestPath:  "/dev/stdout",
		Filetype:   wasip1.FileTypeCharacterDevice,
		Stream:     fsapi.NewStdoutStream(stdout),
		IsPreopen:  true,
		RightsBase: rights.FdWrite | stdioRights,
	}, sys.FdStdout)
	fsCtx.InsertAt(&sys.FileEntry{
		GuestPath:  "/dev/stderr",
		Filetype:   wasip1.FileTypeCharacterDevice,
		Stream:     fsapi.NewStdoutStream(stderr),
		IsPreopen:  true,
		RightsBase: rights.FdWrite | stdioRights,
	}, sys.FdStderr)
}

// Functions returns the Host Function Surface backing this Host, for a
// runtime embedder to register its i32/i64 parameter-unpacking adapters
// against.
func (h *Host) Functions() *wasip1fn.Host { return h.fns }

// FSContext exposes the underlying descriptor table, e.g. for a CLI
// inspector (cmd/wasihostctl) that wants to list live descriptors without
// going through the guest ABI.
func (h *Host) FSContext() *sys.FSContext { return h.fs }

// Mapper exposes the underlying Path Mapper.
func (h *Host) Mapper() *pathmap.Mapper { return h.mapper }

// LogResult logs a non-success errno at Debug level (SPEC_FULL.md §6.2). A
// runtime embedder calls this from its own per-function dispatch wrapper,
// since the Host Function Surface methods themselves stay return-value-only.
func (h *Host) LogResult(fnName string, fd int32, errno wasip1.Errno) {
	if errno == wasip1.ErrnoSuccess {
		return
	}
	h.log.Debug("wasi call failed",
		zap.String("fn", fnName),
		zap.Int32("fd", fd),
		zap.String("errno", wasip1.ErrnoName(errno)),
	)
}

// Close tears down every descriptor this Host holds, closing each one's
// stream whatever its file type (see sys.FSContext.Close).
func (h *Host) Close() error {
	return h.fs.Close()
}
