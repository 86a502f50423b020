package scheduling

import "time"

// Working window for bookable slots: 09:00 inclusive to 17:00 exclusive,
// in 30-minute steps, which yields 16 candidates per day.
const (
	WorkdayStartHour = 9
	WorkdayEndHour   = 17
	SlotInterval     = 30 * time.Minute
)

// DaySlots returns every candidate slot start for the day containing date,
// earliest first. Only the date component of the argument is used.
func DaySlots(date time.Time) []time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := day.Add(WorkdayStartHour * time.Hour)
	end := day.Add(WorkdayEndHour * time.Hour)

	var slots []time.Time
	for slot := start; slot.Before(end); slot = slot.Add(SlotInterval) {
		slots = append(slots, slot)
	}
	return slots
}

// Available filters DaySlots(date) down to slots with no booked start at
// exactly that instant. The test is point equality, not interval overlap:
// an appointment with a non-30-minute duration does not block the
// neighbouring slots it runs into.
func Available(date time.Time, booked []time.Time) []time.Time {
	available := make([]time.Time, 0, 16)
	for _, slot := range DaySlots(date) {
		taken := false
		for _, b := range booked {
			if b.Equal(slot) {
				taken = true
				break
			}
		}
		if !taken {
			available = append(available, slot)
		}
	}
	return available
}
