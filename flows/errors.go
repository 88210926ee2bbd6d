package flows

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedReferenceRow is the kind of every MalformedRowError.
	ErrMalformedReferenceRow = errors.New("malformed reference row")
	// ErrRecordParse is the kind of every RecordParseError.
	ErrRecordParse = errors.New("record parse error")

	// ErrMissingField is returned for a reference row lacking a required field.
	ErrMissingField = errors.New("missing required field")
	// ErrShortRecord is returned for a flow record with too few fields.
	ErrShortRecord = errors.New("too few fields")
	// ErrInvalidPort is returned for a port that is not an integer in [0, 65535].
	ErrInvalidPort = errors.New("invalid port")
	// ErrLineTooLong is returned for a flow log line exceeding the reader's limit.
	ErrLineTooLong = errors.New("line too long")
)

// Reference table names used in MalformedRowError.
const (
	ProtocolTable = "protocol"
	PolicyTable   = "policy"
)

// MalformedRowError reports a reference row that cannot be loaded. Building a
// Registry or Policy stops at the first one.
type MalformedRowError struct {
	Table string // ProtocolTable or PolicyTable
	Line  int    // line in the source file, 0 if unknown
	Field string // offending column, empty if the row could not be split
	Err   error
}

func (e *MalformedRowError) Error() string {
	msg := e.Table + " table"
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	return fmt.Sprintf("%s: %s", msg, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedReferenceRow) hold for every MalformedRowError.
func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedReferenceRow }

// RecordParseError reports a flow record that was skipped.
type RecordParseError struct {
	Source string // flow log name, empty for anonymous input
	Line   int    // 1-based line number within Source
	Err    error
}

func (e *RecordParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRecordParse) hold for every RecordParseError.
func (e *RecordParseError) Is(target error) bool { return target == ErrRecordParse }
