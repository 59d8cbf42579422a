// Package perrors defines the error kinds used across the pipeline, per the
// error handling design: TransientRemote, FatalRemote, LLMStructuralError,
// Corruption, StoreConflict, and ValidationRejection. Components return
// these so the orchestrator's per-meeting recovery boundary can decide
// whether to retry, skip, or log-and-continue.
package perrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for retry/propagation policy.
type Kind string

const (
	KindTransientRemote    Kind = "transient_remote"
	KindFatalRemote        Kind = "fatal_remote"
	KindLLMStructural      Kind = "llm_structural"
	KindCorruption         Kind = "corruption"
	KindStoreConflict      Kind = "store_conflict"
	KindValidationRejected Kind = "validation_rejected"
)

// Error wraps an underlying cause with a Kind and a short scope label
// (e.g. the meeting archive_path, a batch request key) for log correlation.
type Error struct {
	Kind  Kind
	Scope string
	Err   error
}

func (e *Error) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Kind, e.Scope, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a kinded error.
func New(kind Kind, scope string, err error) *Error {
	return &Error{Kind: kind, Scope: scope, Err: err}
}

// Transient wraps err as a TransientRemote error (HTTP 429/500/503, overloaded,
// connection reset — retry once after 5s, then fail the unit).
func Transient(scope string, err error) *Error { return New(KindTransientRemote, scope, err) }

// Fatal wraps err as a FatalRemote error (4xx other than rate-limit, or a
// schema-invalid response after retry — log, record, skip).
func Fatal(scope string, err error) *Error { return New(KindFatalRemote, scope, err) }

// Structural wraps err as an LLMStructuralError (unparseable JSON, missing
// required fields, enum value outside the closed set).
func Structural(scope string, err error) *Error { return New(KindLLMStructural, scope, err) }

// Corrupt wraps err as a Corruption error (missing file, unreadable PDF,
// malformed transcript — mark partial, proceed with what was extracted).
func Corrupt(scope string, err error) *Error { return New(KindCorruption, scope, err) }

// Conflict wraps err as a StoreConflict (unexpected unique-constraint
// violation not covered by an on_conflict target — fatal for the unit).
func Conflict(scope string, err error) *Error { return New(KindStoreConflict, scope, err) }

// Rejected wraps err as a ValidationRejection (vote attributed to a
// non-council person, council creation blocked, implausible timestamp —
// the offending field is silently dropped, processing continues).
func Rejected(scope string, err error) *Error { return New(KindValidationRejected, scope, err) }

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// Sentinel errors for common not-found / capacity conditions used by
// components that don't need the full Kind/Scope wrapping.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnparseableDate  = errors.New("unparseable folder date")
	ErrNoCandidate      = errors.New("no matching candidate")
	ErrBatchJobFailed   = errors.New("batch job failed or was cancelled")
	ErrCouncilNotSeeded = errors.New("council member not present in election roster")
)
