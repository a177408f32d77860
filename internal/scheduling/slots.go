package scheduling

import "time"

// SlotGenerator enumerates bookable windows for a day.
type SlotGenerator struct {
	cfg      BusinessCalendarConfig
	detector ConflictDetector
}

// NewSlotGenerator creates a generator for the clinic calendar.
func NewSlotGenerator(cfg BusinessCalendarConfig) SlotGenerator {
	return SlotGenerator{cfg: cfg, detector: NewConflictDetector(cfg.Buffer())}
}

// Generate returns the available slots of the given duration on date, in
// chronological order. Candidates start every stride from opening time (or from
// the first stride boundary after now + lead time) and must finish by closing.
// Candidate windows may overlap each other; only conflicts with existing
// appointments remove them. Closed and past dates yield no slots.
func (g SlotGenerator) Generate(date Date, duration time.Duration, existing []Appointment, now time.Time) []Slot {
	stride := g.cfg.Stride()
	if duration <= 0 || stride <= 0 {
		return nil
	}
	now = now.In(g.cfg.Location())
	if g.cfg.IsClosedDay(date) || date.Before(DateOf(now)) {
		return nil
	}

	cursor := g.cfg.OpeningTime(date)
	closing := g.cfg.EndOfBusinessDay(date)
	if earliest := now.Add(g.cfg.LeadTime()); earliest.After(cursor) {
		cursor = g.snapForward(date, earliest)
	}

	var slots []Slot
	for ; !cursor.Add(duration).After(closing); cursor = cursor.Add(stride) {
		candidate := Interval{Start: cursor, End: cursor.Add(duration)}
		if conflict, _ := g.detector.HasConflict(candidate, existing); conflict {
			continue
		}
		slots = append(slots, Slot{Interval: candidate, Available: true})
	}

	valid := slots[:0]
	for _, s := range slots {
		if !s.End.After(closing) {
			valid = append(valid, s)
		}
	}
	return valid
}

// snapForward rounds t up to the next stride boundary counted from midnight of date.
func (g SlotGenerator) snapForward(date Date, t time.Time) time.Time {
	midnight := g.cfg.At(date, 0, 0)
	stride := g.cfg.Stride()
	elapsed := t.Sub(midnight)
	steps := elapsed / stride
	if elapsed%stride != 0 {
		steps++
	}
	return midnight.Add(steps * stride)
}
