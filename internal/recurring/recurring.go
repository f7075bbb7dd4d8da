// Package recurring manages scheduled transactions and the processor that
// materializes them into real transactions when they come due.
package recurring

import (
	"strings"
	"time"

	datamodel "github.com/frahmantamala/envelope-budget/internal/core/datamodel/recurring"
	"github.com/shopspring/decimal"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// NormalizeFrequency lowercases and trims raw input, reporting whether the
// result is a supported frequency.
func NormalizeFrequency(raw string) (string, bool) {
	frequency := strings.ToLower(strings.TrimSpace(raw))
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return frequency, true
	default:
		return frequency, false
	}
}

type RecurringTransaction struct {
	ID          string
	UserID      string
	Category    string
	Amount      decimal.Decimal
	Type        string
	Description string
	Frequency   string
	DayOfMonth  int
	IsActive    bool
	LastRunAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type duenessFunc func(r *RecurringTransaction, now time.Time) bool

var duenessByFrequency = map[string]duenessFunc{
	FrequencyDaily:   dueDaily,
	FrequencyWeekly:  dueWeekly,
	FrequencyMonthly: dueMonthly,
}

// IsDue reports whether the schedule should fire at now. Inactive rows and
// unknown frequencies are never due.
func (r *RecurringTransaction) IsDue(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	due, ok := duenessByFrequency[r.Frequency]
	if !ok {
		return false
	}
	return due(r, now)
}

func dueDaily(r *RecurringTransaction, now time.Time) bool {
	if r.LastRunAt == nil {
		return true
	}
	last := r.LastRunAt.In(now.Location())
	return lastCalendarDayBefore(last, now)
}

func dueWeekly(r *RecurringTransaction, now time.Time) bool {
	if r.LastRunAt == nil {
		return true
	}
	return now.Sub(*r.LastRunAt) >= 7*24*time.Hour
}

func dueMonthly(r *RecurringTransaction, now time.Time) bool {
	scheduled := clampDayOfMonth(r.DayOfMonth, now)
	if now.Day() < scheduled {
		return false
	}
	if r.LastRunAt == nil {
		return true
	}
	last := r.LastRunAt.In(now.Location())
	return last.Year() != now.Year() || last.Month() != now.Month()
}

func lastCalendarDayBefore(last, now time.Time) bool {
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	if ly != ny {
		return ly < ny
	}
	if lm != nm {
		return lm < nm
	}
	return ld < nd
}

// clampDayOfMonth folds a schedule day past the end of the current month
// onto its last day, so day 31 still fires in February.
func clampDayOfMonth(day int, now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

func ToDataModel(r *RecurringTransaction) *datamodel.RecurringTransaction {
	return &datamodel.RecurringTransaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Category:    r.Category,
		Amount:      r.Amount,
		Type:        r.Type,
		Description: r.Description,
		Frequency:   r.Frequency,
		DayOfMonth:  r.DayOfMonth,
		IsActive:    r.IsActive,
		LastRunAt:   r.LastRunAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(dm *datamodel.RecurringTransaction) *RecurringTransaction {
	return &RecurringTransaction{
		ID:          dm.ID,
		UserID:      dm.UserID,
		Category:    dm.Category,
		Amount:      dm.Amount,
		Type:        dm.Type,
		Description: dm.Description,
		Frequency:   dm.Frequency,
		DayOfMonth:  dm.DayOfMonth,
		IsActive:    dm.IsActive,
		LastRunAt:   dm.LastRunAt,
		CreatedAt:   dm.CreatedAt,
		UpdatedAt:   dm.UpdatedAt,
	}
}

func FromDataModelSlice(dms []*datamodel.RecurringTransaction) []*RecurringTransaction {
	out := make([]*RecurringTransaction, 0, len(dms))
	for _, dm := range dms {
		out = append(out, FromDataModel(dm))
	}
	return out
}
