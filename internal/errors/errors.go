// Package errors provides the tagged error kinds shared by the repository layer,
// the command dispatcher and the GUI transport.
// Use errors.Is() with the sentinels or KindOf() to branch on a failure.
package errors

import (
	"errors"
	"fmt"
)

// Kind is a stable discriminant that survives serialization to the GUI.
type Kind string

const (
	KindRepositoryNotFound Kind = "repository_not_found"
	KindReferenceNotFound  Kind = "reference_not_found"
	KindInvalidReference   Kind = "invalid_reference"
	KindNotOnABranch       Kind = "not_on_a_branch"
	KindStoreError         Kind = "store_error"
	KindAlreadyExists      Kind = "already_exists"
	KindInvalidArgument    Kind = "invalid_argument"
	KindInvalidOperation   Kind = "invalid_operation"
	KindUnknownCommand     Kind = "unknown_command"
)

// Sentinel errors for common conditions
var (
	// ErrRepositoryNotFound indicates that a path does not contain a git repository
	ErrRepositoryNotFound = &Error{Kind: KindRepositoryNotFound}

	// ErrReferenceNotFound indicates that a named branch or reference does not exist
	ErrReferenceNotFound = &Error{Kind: KindReferenceNotFound}

	// ErrInvalidReference indicates that a reference exists but has no commit target
	ErrInvalidReference = &Error{Kind: KindInvalidReference}

	// ErrNotOnBranch indicates that HEAD is detached or unborn
	ErrNotOnBranch = &Error{Kind: KindNotOnABranch}

	// ErrStore indicates a lower-level failure of the object store
	ErrStore = &Error{Kind: KindStoreError}

	// ErrAlreadyExists indicates that a branch or repository is already present
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}

	// ErrInvalidArgument indicates malformed input from a caller
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}

	// ErrInvalidOperation indicates a request that is refused in the current state
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}

	// ErrUnknownCommand indicates a dispatch for a command that is not registered
	ErrUnknownCommand = &Error{Kind: KindUnknownCommand}
)

// Error is a kind-tagged error. Op names the operation that failed and Err is
// the underlying cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Op != "" && e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Op != "":
		msg = e.Op
	case e.Err != nil:
		msg = e.Err.Error()
	default:
		msg = string(e.Kind)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// New creates a new kind-tagged error
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates a kind-tagged error with a formatted operation description
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first tagged error in err's chain.
// Untagged errors are reported as KindStoreError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreError
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrReferenceNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError wrapped in a reference_not_found error
func NewBranchNotFoundError(branchName string) *Error {
	return &Error{Kind: KindReferenceNotFound, Err: &BranchNotFoundError{BranchName: branchName}}
}
