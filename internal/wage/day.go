package wage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryan-cox/wageledger/internal/model"
)

var (
	sixty = decimal.NewFromInt(60)
	zero  = decimal.Zero
)

// Day computes the wages for one worker's shifts starting on the same
// calendar day. Overlapping shifts are not merged; each counts in full.
func Day(shifts []model.Shift, tariff model.Tariff) model.WageBreakdown {
	if len(shifts) == 0 {
		return zeroBreakdown()
	}

	var totalMinutes int64
	for _, shift := range shifts {
		totalMinutes += shift.Minutes()
	}

	regular := pay(decimal.NewFromInt(totalMinutes), tariff.RegularRate, decimal.NewFromInt(1)).Round(2)
	evening := pay(decimal.NewFromInt(EveningMinutes(shifts, tariff.Evening)), tariff.RegularRate, tariff.Evening.ExtraRate).Round(2)
	overtime := OvertimePay(totalMinutes, tariff).Round(2)

	return model.WageBreakdown{
		Regular:  regular,
		Evening:  evening,
		Overtime: overtime,
		Total:    regular.Add(evening).Add(overtime),
	}
}

// EveningMinutes sums, over all shifts, the minutes that fall inside the
// evening window. The window repeats daily, so it is laid out on the day
// before, the day of and the day after the first shift's start date.
func EveningMinutes(shifts []model.Shift, premium model.EveningPremium) int64 {
	if len(shifts) == 0 {
		return 0
	}

	day := shifts[0].Start
	var windows []interval
	for offset := -1; offset <= 1; offset++ {
		windows = append(windows, eveningWindow(day.AddDate(0, 0, offset), premium))
	}

	var minutes int64
	for _, shift := range shifts {
		span := interval{start: shift.Start, end: shift.End}
		for _, window := range windows {
			minutes += span.overlapMinutes(window)
		}
	}
	return minutes
}

// eveningWindow is the window that opens on day. It closes the next day when
// the window wraps past midnight.
func eveningWindow(day time.Time, premium model.EveningPremium) interval {
	start := premium.Start.On(day)
	end := premium.End.On(day)
	if premium.End.Before(premium.Start) {
		end = premium.End.On(day.AddDate(0, 0, 1))
	}
	return interval{start: start, end: end}
}

// OvertimePay is the unrounded overtime premium for a day with totalMinutes
// of work. Every tier is applied to the day's total independently, so
// overlapping tiers stack.
func OvertimePay(totalMinutes int64, tariff model.Tariff) decimal.Decimal {
	total := decimal.NewFromInt(totalMinutes)
	sum := zero
	for _, tier := range tariff.Overtime {
		minutes := total.Sub(tier.FromHours.Mul(sixty))
		if minutes.IsNegative() {
			minutes = zero
		}
		if tier.ToHours.Valid {
			limit := tier.ToHours.Decimal.Sub(tier.FromHours).Mul(sixty)
			minutes = decimal.Min(minutes, limit)
		}
		sum = sum.Add(pay(minutes, tariff.RegularRate, tier.Multiplier))
	}
	return sum
}

// pay is minutes/60 * rate * multiplier. Dividing last keeps the result
// exact whenever it has a finite decimal expansion.
func pay(minutes, rate, multiplier decimal.Decimal) decimal.Decimal {
	return minutes.Mul(rate).Mul(multiplier).Div(sixty)
}

func zeroBreakdown() model.WageBreakdown {
	return model.WageBreakdown{Regular: zero, Evening: zero, Overtime: zero, Total: zero}
}
