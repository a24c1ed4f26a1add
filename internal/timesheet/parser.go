// Package timesheet turns raw timesheet text into validated shifts.
//
// A timesheet has one shift per line and five comma separated columns:
//
//	name,id,date,start,end
//	Pekka,1,3.3.2014,8:00,16:30
//
// Dates are D.M.YYYY (one or two digit day and month), times H:MM or HH:MM.
// An end time earlier than the start time means the shift ends the next day.
package timesheet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bryan-cox/wageledger/internal/model"
)

const (
	columnCount = 5
	dateLayout  = "2.1.2006"
)

var idRegex = regexp.MustCompile(`^\d+$`)

// Parser parses timesheets whose dates belong to Location.
type Parser struct {
	Location *time.Location
}

// NewParser returns a parser for timesheets kept in loc. A nil loc means
// time.Local.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{Location: loc}
}

// Parse parses text with a parser for the local time zone.
func Parse(text string) ([]model.Shift, error) {
	return NewParser(time.Local).Parse(text)
}

// Parse validates every row of text. It returns the shifts in row order when
// all rows are valid. Otherwise it returns no shifts and a *ParseError
// holding one RowError per invalid row.
func (p *Parser) Parse(text string) ([]model.Shift, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	shifts := make([]model.Shift, 0, len(lines))
	var rowErrs []RowError
	for i, line := range lines {
		shift, rowErr := p.parseRow(strings.Split(line, ","))
		if rowErr != nil {
			rowErr.Row = i
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		shifts = append(shifts, shift)
	}

	if len(rowErrs) > 0 {
		return nil, &ParseError{Rows: rowErrs}
	}
	return shifts, nil
}

func (p *Parser) parseRow(fields []string) (model.Shift, *RowError) {
	if len(fields) != columnCount {
		return model.Shift{}, rowError(KindInvalidColumns, "Row should have %d columns, had %d", columnCount, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	nameToken, idToken, dateToken, startToken, endToken := fields[0], fields[1], fields[2], fields[3], fields[4]

	if nameToken == "" {
		return model.Shift{}, rowError(KindInvalidName, "Name cannot be empty")
	}

	if !idRegex.MatchString(idToken) {
		return model.Shift{}, rowError(KindInvalidID, "Id '%s' is invalid", idToken)
	}
	id, err := strconv.ParseUint(idToken, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return model.Shift{}, rowError(KindInvalidID, "Id '%s' is too large", idToken)
		}
		return model.Shift{}, rowError(KindInvalidID, "Id '%s' is invalid", idToken)
	}

	date, err := time.ParseInLocation(dateLayout, dateToken, p.Location)
	if err != nil {
		return model.Shift{}, rowError(KindInvalidDate, "Date '%s' is invalid", dateToken)
	}

	startClock, ok := model.ParseClock(startToken)
	if !ok {
		return model.Shift{}, rowError(KindInvalidTime, "Time '%s' is invalid", startToken)
	}
	endClock, ok := model.ParseClock(endToken)
	if !ok {
		return model.Shift{}, rowError(KindInvalidTime, "Time '%s' is invalid", endToken)
	}

	start := startClock.On(date)
	end := endClock.On(date)
	// A shift never spans more than a day, so an end at or before the start
	// belongs to the following day.
	if !end.After(start) {
		end = endClock.On(date.AddDate(0, 0, 1))
	}

	return model.Shift{
		Name:     nameToken,
		WorkerID: id,
		Start:    start,
		End:      end,
	}, nil
}

func rowError(kind ErrorKind, format string, args ...any) *RowError {
	return &RowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
