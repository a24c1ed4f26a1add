// Package model defines the core data structures for WageLedger.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for day keys and output.
const DateLayout = "2006-01-02"

// Shift is one validated timesheet row: a continuous block of work for one
// worker. End is always after Start.
type Shift struct {
	Name     string
	WorkerID uint64
	Start    time.Time
	End      time.Time
}

// Equal reports whether two shifts have the same worker and the same start
// and end instants.
func (s Shift) Equal(other Shift) bool {
	return s.Name == other.Name &&
		s.WorkerID == other.WorkerID &&
		s.Start.Equal(other.Start) &&
		s.End.Equal(other.End)
}

// Minutes returns the length of the shift in whole minutes.
func (s Shift) Minutes() int64 {
	return int64(s.End.Sub(s.Start) / time.Minute)
}

// Date returns the calendar date the shift is attributed to: the day it
// starts on.
func (s Shift) Date() string {
	return s.Start.Format(DateLayout)
}

// EveningPremium is the recurring daily window that earns an extra rate.
// The window wraps past midnight when End is before Start.
type EveningPremium struct {
	ExtraRate decimal.Decimal
	Start     Clock
	End       Clock
}

// OvertimeTier applies Multiplier to the part of the daily hours between
// FromHours and ToHours. An invalid ToHours means the tier is unbounded.
type OvertimeTier struct {
	FromHours  decimal.Decimal
	ToHours    decimal.NullDecimal
	Multiplier decimal.Decimal
}

// Tariff bundles the rates wages are calculated with.
type Tariff struct {
	RegularRate decimal.Decimal
	Evening     EveningPremium
	Overtime    []OvertimeTier
}

// WageBreakdown splits an amount of pay into its parts. Each part is rounded
// to two decimals; Total is their exact sum.
type WageBreakdown struct {
	Regular  decimal.Decimal
	Evening  decimal.Decimal
	Overtime decimal.Decimal
	Total    decimal.Decimal
}

// Add returns the component-wise sum of b and other.
func (b WageBreakdown) Add(other WageBreakdown) WageBreakdown {
	return WageBreakdown{
		Regular:  b.Regular.Add(other.Regular),
		Evening:  b.Evening.Add(other.Evening),
		Overtime: b.Overtime.Add(other.Overtime),
		Total:    b.Total.Add(other.Total),
	}
}

// MarshalJSON writes every amount as a string fixed to two decimals.
func (b WageBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Regular  string `json:"regular"`
		Evening  string `json:"evening"`
		Overtime string `json:"overtime"`
		Total    string `json:"total"`
	}{
		Regular:  b.Regular.StringFixed(2),
		Evening:  b.Evening.StringFixed(2),
		Overtime: b.Overtime.StringFixed(2),
		Total:    b.Total.StringFixed(2),
	})
}

// DailyWage is the pay of one worker for one calendar day.
type DailyWage struct {
	Date  string        `json:"date"`
	Wages WageBreakdown `json:"wages"`
}

// WorkerMonthlyWage is the pay of one worker for one month.
type WorkerMonthlyWage struct {
	ID           uint64        `json:"id"`
	Name         string        `json:"name"`
	MonthlyWages WageBreakdown `json:"monthly_wages"`
	DailyWages   []DailyWage   `json:"daily_wages"`
}

// MonthlyReport holds every worker's pay for one month, ordered by id.
type MonthlyReport struct {
	Year    int                 `json:"year"`
	Month   time.Month          `json:"month"`
	Workers []WorkerMonthlyWage `json:"workers"`
}
