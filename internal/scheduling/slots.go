package scheduling

import "time"

// FallbackSlot is the neutral default start time used when a date has no
// resolvable opening window: rather than blocking the flow, the parcel gets a
// midday slot the staff can correct later.
const FallbackSlot = TimeOfDay(12 * 60)

// SlotGrid is the minute grid slot start times are quantized to.
const SlotGrid = 15

// EnumerateSlots lists every valid slot start inside the window: starting at
// opening, stepping by the slot duration, while the slot's end still fits at
// or before closing. The last emitted start is exactly Close-duration; an
// empty sequence means the window cannot fit a single slot, which is a
// legitimate "no valid slots" outcome rather than an error.
func EnumerateSlots(w Window, durationMin int) []TimeOfDay {
	if durationMin <= 0 {
		return nil
	}
	last := w.LastStart(durationMin)
	if last < w.Open {
		return nil
	}
	slots := make([]TimeOfDay, 0, int(last-w.Open)/durationMin+1)
	for t := w.Open; t <= last; t = t.AddMinutes(durationMin) {
		slots = append(slots, t)
	}
	return slots
}

// FilterPastSlots drops slots that already started when date is today in the
// region's timezone; other dates pass through untouched. A slot survives only
// if it starts strictly after the current wall-clock time.
func FilterPastSlots(slots []TimeOfDay, date time.Time, clock Clock) []TimeOfDay {
	loc := clock.Location()
	if !SameCivilDate(date, clock.Now(), loc) {
		return slots
	}
	now := TimeOfDayFrom(clock.Now(), loc)
	kept := make([]TimeOfDay, 0, len(slots))
	for _, s := range slots {
		if s > now {
			kept = append(kept, s)
		}
	}
	return kept
}

// FirstAvailableSlot is the first enumerable slot of the window, or
// FallbackSlot when the window fits none.
func FirstAvailableSlot(w Window, durationMin int) TimeOfDay {
	slots := EnumerateSlots(w, durationMin)
	if len(slots) == 0 {
		return FallbackSlot
	}
	return slots[0]
}
