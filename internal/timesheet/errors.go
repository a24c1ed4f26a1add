package timesheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a row could not be parsed.
type ErrorKind string

// Row error kinds, in the order the checks run.
const (
	KindInvalidColumns ErrorKind = "invalid-columns"
	KindInvalidName    ErrorKind = "invalid-name"
	KindInvalidID      ErrorKind = "invalid-id"
	KindInvalidDate    ErrorKind = "invalid-date"
	KindInvalidTime    ErrorKind = "invalid-time"
)

// Sentinels that RowError unwraps to. Use with errors.Is.
var (
	ErrInvalidColumns = errors.New("invalid columns")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidTime    = errors.New("invalid time")
)

var sentinels = map[ErrorKind]error{
	KindInvalidColumns: ErrInvalidColumns,
	KindInvalidName:    ErrInvalidName,
	KindInvalidID:      ErrInvalidID,
	KindInvalidDate:    ErrInvalidDate,
	KindInvalidTime:    ErrInvalidTime,
}

// RowError describes the first failed check on one row. Row is zero-based
// over the data rows of the trimmed input.
type RowError struct {
	Row     int       `json:"row"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Kind, e.Message)
}

func (e *RowError) Unwrap() error {
	return sentinels[e.Kind]
}

// ParseError is returned when at least one row is invalid. It carries every
// row error, in row order.
type ParseError struct {
	Rows []RowError
}

func (e *ParseError) Error() string {
	if len(e.Rows) == 1 {
		return "timesheet: " + e.Rows[0].Error()
	}
	msgs := make([]string, 0, len(e.Rows))
	for i := range e.Rows {
		msgs = append(msgs, e.Rows[i].Error())
	}
	return fmt.Sprintf("timesheet: %d invalid rows: %s", len(e.Rows), strings.Join(msgs, "; "))
}

// Unwrap exposes the row errors so errors.Is matches any of their kinds.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Rows))
	for i := range e.Rows {
		errs[i] = &e.Rows[i]
	}
	return errs
}
