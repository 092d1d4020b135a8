//go:build !unix

package ioadapter

// noFollowFlag has no portable equivalent outside unix; non-unix hosts rely
// on the Path Mapper's containment re-check alone.
const noFollowFlag = 0
