// Package vcserr defines the error kinds kiln's core can raise.
//
// The teacher never builds a custom error hierarchy; every package
// wraps a plain error with fmt.Errorf("...: %w", err). vcserr follows
// the same shape, just with one exported sentinel per failure class so
// callers can classify a failure with errors.Is instead of string
// matching.
package vcserr

import "errors"

var (
	// Io is raised when a filesystem call reports a failure not otherwise classified.
	Io = errors.New("io")

	// NotFound is raised when a referenced object, ref, index, or file is missing.
	NotFound = errors.New("not found")

	// CorruptObject is raised on zlib failure or object decode failure.
	CorruptObject = errors.New("corrupt object")

	// CorruptIndex is raised on index signature/version/truncation failure.
	CorruptIndex = errors.New("corrupt index")

	// CorruptTree is raised on tree structure decode failure.
	CorruptTree = errors.New("corrupt tree")

	// CorruptCommit is raised on commit structure decode failure.
	CorruptCommit = errors.New("corrupt commit")

	// UnknownObjectType is raised when an object header token isn't blob/tree/commit.
	UnknownObjectType = errors.New("unknown object type")

	// UnknownRef is raised when a reference file is missing or unreadable as hex.
	UnknownRef = errors.New("unknown ref")

	// DetachedHeadUnsupported is raised when HEAD does not begin with "ref: ".
	DetachedHeadUnsupported = errors.New("detached HEAD unsupported")

	// InvalidMode is raised when a tree entry mode is outside the supported set during apply.
	InvalidMode = errors.New("invalid mode")
)
