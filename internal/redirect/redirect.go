// Package redirect normalizes and validates redirection targets before a
// child process is spawned.
package redirect

import (
	"fmt"
	"os"
	"strings"

	"github.com/th3oth3rjak3/smallsh/internal/parser"
)

type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Error reports a redirection target that cannot be used.
type Error struct {
	Direction Direction
	Path      string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot redirect %s to %s: %v", e.Direction, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Resolve normalizes path to an openable form. Paths that are not already
// absolute or ./-prefixed are made relative to the current directory.
//
// For Input the resolved path must name an existing regular file or be
// exactly /dev/null; the open itself happens at dispatch time. For Output
// only the path string is computed here, since the target is created and
// truncated when the child is spawned.
func Resolve(path string, dir Direction) (string, error) {
	if !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}

	if dir == Input && path != parser.DevNull {
		info, err := os.Stat(path)
		if err != nil {
			return "", &Error{Direction: dir, Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			return "", &Error{Direction: dir, Path: path, Err: fmt.Errorf("not a regular file")}
		}
	}

	return path, nil
}
