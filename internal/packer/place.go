package packer

import "fivepack/internal/fileutil"

// Action is the transfer verb used for a whole build.
type Action string

const (
	ActionCopy Action = "COPY"
	ActionMove Action = "MOVE"
)

// ActionFor maps the move flag to an action.
func ActionFor(move bool) Action {
	if move {
		return ActionMove
	}
	return ActionCopy
}

// Place transfers the placement's source file to its target and returns the
// number of bytes placed. The target is never overwritten.
func Place(action Action, p Placement) (int64, error) {
	if action == ActionMove {
		return fileutil.MoveFile(p.File.Path, p.Target)
	}
	return fileutil.CopyFile(p.File.Path, p.Target)
}
