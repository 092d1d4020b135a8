package main

import (
	"strings"

	"github.com/andrewmd5/wasihost/internal/rights"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// namedRights pairs every rights bit with its witx name, in declaration
// order, purely for human-readable CLI output; nothing in the library
// packages needs this, since host functions only ever test membership.
var namedRights = []struct {
	name string
	bit  rights.Rights
}{
	{"fd_datasync", rights.FdDatasync},
	{"fd_read", rights.FdRead},
	{"fd_seek", rights.FdSeek},
	{"fd_fdstat_set_flags", rights.FdFdstatSetFlags},
	{"fd_sync", rights.FdSync},
	{"fd_tell", rights.FdTell},
	{"fd_write", rights.FdWrite},
	{"fd_advise", rights.FdAdvise},
	{"fd_allocate", rights.FdAllocate},
	{"path_create_directory", rights.PathCreateDirectory},
	{"path_create_file", rights.PathCreateFile},
	{"path_link_source", rights.PathLinkSource},
	{"path_link_target", rights.PathLinkTarget},
	{"path_open", rights.PathOpen},
	{"fd_readdir", rights.FdReaddir},
	{"path_readlink", rights.PathReadlink},
	{"path_rename_source", rights.PathRenameSource},
	{"path_rename_target", rights.PathRenameTarget},
	{"path_filestat_get", rights.PathFilestatGet},
	{"path_filestat_set_size", rights.PathFilestatSetSize},
	{"path_filestat_set_times", rights.PathFilestatSetTimes},
	{"fd_filestat_get", rights.FdFilestatGet},
	{"fd_filestat_set_size", rights.FdFilestatSetSize},
	{"fd_filestat_set_times", rights.FdFilestatSetTimes},
	{"path_symlink", rights.PathSymlink},
	{"path_remove_directory", rights.PathRemoveDirectory},
	{"path_unlink_file", rights.PathUnlinkFile},
	{"poll_fd_readwrite", rights.PollFdReadwrite},
	{"sock_shutdown", rights.SockShutdown},
	{"sock_accept", rights.SockAccept},
}

func formatRights(r rights.Rights) string {
	var names []string
	for _, nr := range namedRights {
		if r&nr.bit != 0 {
			names = append(names, nr.name)
		}
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ",")
}

func filetypeName(ft wasip1.FileType) string {
	switch ft {
	case wasip1.FileTypeBlockDevice:
		return "block_device"
	case wasip1.FileTypeCharacterDevice:
		return "character_device"
	case wasip1.FileTypeDirectory:
		return "directory"
	case wasip1.FileTypeRegularFile:
		return "regular_file"
	case wasip1.FileTypeSocketDgram:
		return "socket_dgram"
	case wasip1.FileTypeSocketStream:
		return "socket_stream"
	case wasip1.FileTypeSymbolicLink:
		return "symbolic_link"
	default:
		return "unknown"
	}
}
