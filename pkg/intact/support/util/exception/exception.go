// Package exception provides the error type shared by the curation store.
// Every error raised by the reconciliation core carries a Kind so that callers can
// tell an ambiguous lookup apart from a failed insert or a failed merge without
// string matching.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies an IntactError.
type Kind string

const (
	// KindFinder marks an ambiguous or structurally failed identity lookup.
	KindFinder Kind = "finder"
	// KindPersister marks a failed insert.
	KindPersister Kind = "persister"
	// KindSynchronizer marks a failed merge or update.
	KindSynchronizer Kind = "synchronizer"
	// KindMerge wraps any of the above when raised from an enrichment callback. It is fatal to the pass.
	KindMerge Kind = "merge"
	// KindLifecycle marks a rejected or failed curation lifecycle transition.
	KindLifecycle Kind = "lifecycle"
	// KindConfig marks invalid configuration.
	KindConfig Kind = "config"
	// KindImport marks an unreadable or invalid dataset file.
	KindImport Kind = "import"
	// KindExport marks a failed release export.
	KindExport Kind = "export"
)

// kindError is the sentinel behind each Kind, matched through errors.Is.
type kindError struct{ kind Kind }

func (k *kindError) Error() string { return string(k.kind) + " error" }

// Sentinels for errors.Is(err, exception.ErrFinder) style checks.
var (
	ErrFinder       error = &kindError{KindFinder}
	ErrPersister    error = &kindError{KindPersister}
	ErrSynchronizer error = &kindError{KindSynchronizer}
	ErrMerge        error = &kindError{KindMerge}
	ErrLifecycle    error = &kindError{KindLifecycle}
	ErrConfig       error = &kindError{KindConfig}
	ErrImport       error = &kindError{KindImport}
	ErrExport       error = &kindError{KindExport}
)

// Detail sentinels, wrapped as OriginalErr.
var (
	ErrAmbiguousMatch           = errors.New("more than one persisted row matches")
	ErrCounterpartNotFound      = errors.New("no persisted counterpart")
	ErrIllegalTransition        = errors.New("illegal lifecycle transition")
	ErrReleasableNotFound       = errors.New("releasable not found")
	ErrOptimisticLockingFailure = errors.New("OptimisticLockingFailureException")
)

// IntactError is the error type raised across the store.
type IntactError struct {
	Kind Kind
	// Module indicates where the error occurred (e.g. "CvTermSynchronizer.Find").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// NewIntactError creates a new IntactError of the given kind.
func NewIntactError(kind Kind, module, message string, originalErr error) *IntactError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return &IntactError{
		Kind:        kind,
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  string(buf[:n]),
	}
}

// NewFinderError reports an identity lookup failure.
func NewFinderError(module, message string, err error) *IntactError {
	return NewIntactError(KindFinder, module, message, err)
}

// NewPersisterError reports an insert failure.
func NewPersisterError(module, message string, err error) *IntactError {
	return NewIntactError(KindPersister, module, message, err)
}

// NewSynchronizerError reports a merge or update failure.
func NewSynchronizerError(module, message string, err error) *IntactError {
	return NewIntactError(KindSynchronizer, module, message, err)
}

// NewMergeError wraps a failure raised while draining enrichment updates.
func NewMergeError(module, message string, err error) *IntactError {
	return NewIntactError(KindMerge, module, message, err)
}

// NewLifecycleError reports a rejected lifecycle transition.
func NewLifecycleError(module, message string, err error) *IntactError {
	return NewIntactError(KindLifecycle, module, message, err)
}

// NewConfigError reports invalid configuration.
func NewConfigError(module, message string, err error) *IntactError {
	return NewIntactError(KindConfig, module, message, err)
}

// NewImportError reports a dataset that cannot be read.
func NewImportError(module, message string, err error) *IntactError {
	return NewIntactError(KindImport, module, message, err)
}

// NewExportError reports a failed export.
func NewExportError(module, message string, err error) *IntactError {
	return NewIntactError(KindExport, module, message, err)
}

// NewOptimisticLockingFailureException reports a lost versioned update.
func NewOptimisticLockingFailureException(module, message string, originalErr error) *IntactError {
	errToWrap := ErrOptimisticLockingFailure
	if originalErr != nil {
		errToWrap = errors.Join(ErrOptimisticLockingFailure, originalErr)
	}
	return NewSynchronizerError(module, message, errToWrap)
}

// Error implements the error interface.
func (e *IntactError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *IntactError) Unwrap() error {
	return e.OriginalErr
}

// Is matches the kind sentinels, so errors.Is(err, ErrFinder) holds for every finder error
// regardless of how deeply it was wrapped.
func (e *IntactError) Is(target error) bool {
	if k, ok := target.(*kindError); ok {
		return k.kind == e.Kind
	}
	return false
}

// KindOf returns the kind of the outermost IntactError in err's chain, or "".
func KindOf(err error) Kind {
	var ie *IntactError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsOptimisticLockingFailure determines if an error indicates an optimistic locking failure.
func IsOptimisticLockingFailure(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrOptimisticLockingFailure)
}

// ExtractErrorMessage returns the Message of an IntactError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ie *IntactError
	if errors.As(err, &ie) {
		return ie.Message
	}
	return err.Error()
}
