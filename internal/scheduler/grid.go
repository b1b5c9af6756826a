package scheduler

import "fmt"

// Days and SlotsPerDay fix the weekly grid: 5 weekdays, 8 periods each,
// 40 cells total. Every day/slot index used throughout the scheduler is
// relative to this grid.
const (
	Days        = 5
	SlotsPerDay = 8
)

// DayNames maps a day index to its three-letter label.
var DayNames = [Days]string{"MON", "TUE", "WED", "THU", "FRI"}

// slotStarts is the canonical slot-index to clock-start mapping. Slot 1
// runs until 09:30 (a 30-minute break precedes slot 2); every other slot
// is exactly one hour.
var slotStarts = [SlotsPerDay]string{
	"07:30", "08:30", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00",
}

// SlotStart returns the clock time a slot begins.
func SlotStart(slot int) string {
	return slotStarts[slot]
}

// SlotEnd returns the clock time a slot ends.
func SlotEnd(slot int) string {
	if slot == 1 {
		return "09:30"
	}
	start := slotStarts[slot]
	var hour, minute int
	fmt.Sscanf(start, "%d:%d", &hour, &minute)
	return fmt.Sprintf("%02d:%02d", hour+1, minute)
}
