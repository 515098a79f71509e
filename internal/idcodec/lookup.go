package idcodec

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/edk2meta/internal/types"
)

// LookupErrorReason indicates why a record lookup failed.
type LookupErrorReason int

const (
	// ReasonNotFound indicates the id does not exist in the table.
	ReasonNotFound LookupErrorReason = iota
	// ReasonDisabled indicates the record exists but was disabled by
	// directive resolution or a component override.
	ReasonDisabled
	// ReasonInvalidID indicates the provided token didn't decode to a
	// well-formed RecordID.
	ReasonInvalidID
)

func (r LookupErrorReason) String() string {
	switch r {
	case ReasonNotFound:
		return "not found"
	case ReasonDisabled:
		return "disabled"
	case ReasonInvalidID:
		return "invalid ID"
	default:
		return "unknown"
	}
}

// LookupError reports why RecordLookup.Get failed for a given id.
type LookupError struct {
	ID     types.RecordID
	Reason LookupErrorReason
	Detail string
}

func (e *LookupError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("record lookup failed for %d: %s (%s)", e.ID, e.Reason, e.Detail)
	}
	return fmt.Sprintf("record lookup failed for %d: %s", e.ID, e.Reason)
}

// Is implements errors.Is for LookupError, matching on reason only.
func (e *LookupError) Is(target error) bool {
	var le *LookupError
	if errors.As(target, &le) {
		return e.Reason == le.Reason
	}
	return false
}

// Sentinel errors for use with errors.Is.
var (
	ErrRecordNotFound = &LookupError{Reason: ReasonNotFound}
	ErrRecordDisabled = &LookupError{Reason: ReasonDisabled}
	ErrRecordInvalid  = &LookupError{Reason: ReasonInvalidID}
)

// RecordGetter is the minimal lookup surface a RecordLookup wraps; both
// store.Table and the records returned by factory.ParseResult satisfy it
// once adapted by the caller (see cmd/edk2meta's query command).
type RecordGetter interface {
	ByID(id types.RecordID) (value interface{}, enabled bool, ok bool)
}

// RecordLookup wraps a RecordGetter's raw (value, bool) result in a typed
// LookupError, so CLI and query code get a consistent "why did this id not
// resolve" message instead of re-deriving it at every call site.
type RecordLookup struct {
	getter RecordGetter
}

// NewRecordLookup builds a RecordLookup over getter.
func NewRecordLookup(getter RecordGetter) *RecordLookup {
	return &RecordLookup{getter: getter}
}

// Get resolves id, distinguishing "absent" from "present but disabled".
func (l *RecordLookup) Get(id types.RecordID) (interface{}, error) {
	if id < 0 {
		return nil, &LookupError{ID: id, Reason: ReasonInvalidID, Detail: "negative id"}
	}
	value, enabled, ok := l.getter.ByID(id)
	if !ok {
		return nil, &LookupError{ID: id, Reason: ReasonNotFound}
	}
	if !enabled {
		return nil, &LookupError{ID: id, Reason: ReasonDisabled}
	}
	return value, nil
}

// DecodeAndGet decodes a base-63 token and resolves it in one step.
func (l *RecordLookup) DecodeAndGet(encoded string) (interface{}, error) {
	id, err := DecodeRecordID(encoded)
	if err != nil {
		return nil, &LookupError{Reason: ReasonInvalidID, Detail: err.Error()}
	}
	return l.Get(id)
}
