// Package wage calculates monthly wages from validated shifts.
//
// Shifts are grouped by month, then worker, then the calendar day they start
// on. Each worker-day gets a WageBreakdown; a worker's monthly total is the
// component-wise sum of their days.
package wage

import (
	"sort"
	"time"

	"github.com/bryan-cox/wageledger/internal/model"
)

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) before(other monthKey) bool {
	if k.year != other.year {
		return k.year < other.year
	}
	return k.month < other.month
}

// workerShifts collects one worker's shifts of a month by day.
type workerShifts struct {
	id   uint64
	name string
	days map[string][]model.Shift
}

// Calculate returns one report per month that has shifts, in ascending
// order. Workers within a month are ordered by id and their days by date.
// Shifts must come from a successful parse.
func Calculate(shifts []model.Shift, tariff model.Tariff) []model.MonthlyReport {
	months := make(map[monthKey]map[uint64]*workerShifts)
	for _, shift := range shifts {
		key := monthKey{year: shift.Start.Year(), month: shift.Start.Month()}
		workers, ok := months[key]
		if !ok {
			workers = make(map[uint64]*workerShifts)
			months[key] = workers
		}

		worker, ok := workers[shift.WorkerID]
		if !ok {
			worker = &workerShifts{id: shift.WorkerID, name: shift.Name, days: make(map[string][]model.Shift)}
			workers[shift.WorkerID] = worker
		}

		date := shift.Date()
		worker.days[date] = append(worker.days[date], shift)
	}

	keys := make([]monthKey, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	reports := make([]model.MonthlyReport, 0, len(keys))
	for _, key := range keys {
		reports = append(reports, model.MonthlyReport{
			Year:    key.year,
			Month:   key.month,
			Workers: calculateMonth(months[key], tariff),
		})
	}
	return reports
}

func calculateMonth(workers map[uint64]*workerShifts, tariff model.Tariff) []model.WorkerMonthlyWage {
	ids := make([]uint64, 0, len(workers))
	for id := range workers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]model.WorkerMonthlyWage, 0, len(ids))
	for _, id := range ids {
		worker := workers[id]
		daily := calculateWorker(worker, tariff)
		result = append(result, model.WorkerMonthlyWage{
			ID:           worker.id,
			Name:         worker.name,
			MonthlyWages: MonthlyTotal(daily),
			DailyWages:   daily,
		})
	}
	return result
}

func calculateWorker(worker *workerShifts, tariff model.Tariff) []model.DailyWage {
	dates := make([]string, 0, len(worker.days))
	for date := range worker.days {
		dates = append(dates, date)
	}
	// YYYY-MM-DD keys sort chronologically as strings.
	sort.Strings(dates)

	daily := make([]model.DailyWage, 0, len(dates))
	for _, date := range dates {
		daily = append(daily, model.DailyWage{
			Date:  date,
			Wages: Day(worker.days[date], tariff),
		})
	}
	return daily
}

// MonthlyTotal sums daily wages component by component.
func MonthlyTotal(daily []model.DailyWage) model.WageBreakdown {
	total := zeroBreakdown()
	for _, day := range daily {
		total = total.Add(day.Wages)
	}
	return total
}
