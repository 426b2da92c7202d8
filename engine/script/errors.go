package script

import (
	"errors"
	"fmt"
)

var (
	ErrScriptActive = errors.New("a script is already running")
	ErrNoScript     = errors.New("no script running")
)

// CompileError reports source that failed to parse or compile. Nothing has
// run when it is returned.
type CompileError struct {
	Script string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling script %s: %v", e.Script, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// RuntimeError reports a failure while running a script. Msg is the message
// raised in the script; Err, when set, is the host error behind it.
type RuntimeError struct {
	Script string
	Msg    string
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("running script %s: %s", e.Script, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
