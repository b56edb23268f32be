package dom

import (
	"fmt"

	"github.com/pkg/errors"
)

// Engine-invariant errors for the store. One raised inside Apply aborts
// it without committing any part of the batch. Apply reports all but
// ErrUnknownHandle inside an ApplyError whose Reason is wrapped with
// github.com/pkg/errors at the point of detection, so a caller can
// recover a stack trace for what is, by definition, a programming bug
// or resource-exhaustion condition rather than a recoverable parse
// error. ErrUnknownHandle (from any method) and ErrMissingRoot (from
// GetCurrent and Materialize) are returned as bare sentinels.
var (
	ErrUnknownHandle      = errors.New("dom: unknown document handle")
	ErrVersionMismatch    = errors.New("dom: apply from-version does not match store's current version")
	ErrNonMonotonicVersion = errors.New("dom: apply to-version is not from-version + 1")
	ErrInvalidKey         = errors.New("dom: zero is not a valid key")
	ErrDuplicateKey       = errors.New("dom: key already allocated in this version stream")
	ErrMissingKey         = errors.New("dom: key does not reference any allocated node")
	ErrWrongNodeKind      = errors.New("dom: patch target is not the expected node kind")
	ErrInvalidParent      = errors.New("dom: text/comment node cannot be a parent, or node already has a parent")
	ErrInvalidSibling     = errors.New("dom: before-key is not a child of parent")
	ErrCycleDetected      = errors.New("dom: append would create a cycle")
	ErrMissingRoot        = errors.New("dom: document has no root to materialize")
	ErrMisplacedClear     = errors.New("dom: Clear patch may only be the first patch of a batch")
)

// ApplyError wraps one of the sentinels above with the Key and
// PatchType that triggered it, so a caller can log structured context
// without string-matching the message.
type ApplyError struct {
	Patch  Patch
	Reason error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("dom: apply failed at patch %s (key=%d): %v", e.Patch.Type, e.Patch.Key, e.Reason)
}

func (e *ApplyError) Unwrap() error { return e.Reason }

func (e *ApplyError) Is(target error) bool {
	return errors.Is(e.Reason, target)
}

func wrapApplyErr(p Patch, reason error) error {
	return &ApplyError{Patch: p, Reason: errors.WithStack(reason)}
}
