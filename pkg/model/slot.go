package model

import (
	"cmp"
	"fmt"
)

// TimeSlot is the atomic unit of schedulable time. All attributes are 1-based
type TimeSlot struct {
	Week   int
	Day    int
	Period int
}

func (slot TimeSlot) Label() string {
	return fmt.Sprintf("W%d-D%d-P%d", slot.Week, slot.Day, slot.Period)
}

func (slot TimeSlot) String() string {
	return slot.Label()
}

// Compare orders slots by week, then day, then period
func (slot TimeSlot) Compare(other TimeSlot) int {
	if c := cmp.Compare(slot.Week, other.Week); c != 0 {
		return c
	}
	if c := cmp.Compare(slot.Day, other.Day); c != 0 {
		return c
	}
	return cmp.Compare(slot.Period, other.Period)
}

// Calendar defines the slot universe as the Cartesian product weeks × days × periods
type Calendar struct {
	Weeks   int
	Days    int
	Periods int
}

func NewCalendar(weeks, days, periods int) (Calendar, error) {
	if weeks < 1 || days < 1 || periods < 1 {
		return Calendar{}, fmt.Errorf("weeks, days and periods must be positive: %d×%d×%d", weeks, days, periods)
	}
	return Calendar{Weeks: weeks, Days: days, Periods: periods}, nil
}

// Size returns the number of slots, which is also the capacity of any single resource
func (calendar Calendar) Size() int {
	return calendar.Weeks * calendar.Days * calendar.Periods
}

// Slot returns the slot at the given 0-based ordinal
func (calendar Calendar) Slot(ordinal int) TimeSlot {
	period := ordinal % calendar.Periods
	ordinal /= calendar.Periods
	day := ordinal % calendar.Days
	week := ordinal / calendar.Days
	return TimeSlot{Week: week + 1, Day: day + 1, Period: period + 1}
}

// Ordinal is the inverse of Slot
func (calendar Calendar) Ordinal(slot TimeSlot) int {
	return ((slot.Week-1)*calendar.Days+slot.Day-1)*calendar.Periods + slot.Period - 1
}

func (calendar Calendar) Contains(slot TimeSlot) bool {
	return slot.Week >= 1 && slot.Week <= calendar.Weeks &&
		slot.Day >= 1 && slot.Day <= calendar.Days &&
		slot.Period >= 1 && slot.Period <= calendar.Periods
}

// Slots enumerates the whole universe in order
func (calendar Calendar) Slots() []TimeSlot {
	slots := make([]TimeSlot, calendar.Size())
	for ordinal := range slots {
		slots[ordinal] = calendar.Slot(ordinal)
	}
	return slots
}

func (calendar Calendar) String() string {
	return fmt.Sprintf("%d weeks × %d days × %d periods", calendar.Weeks, calendar.Days, calendar.Periods)
}
