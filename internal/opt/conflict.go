package opt

import (
	"fmt"
	"sort"
	"time"

	"careassign/internal/model"
)

// AvailabilityIndex maps caregiver ID to declared per-weekday windows.
// A caregiver absent from the index (or with no windows at all) is treated
// as always available; a caregiver with declared windows is unavailable on
// weekdays with no entry.
type AvailabilityIndex map[string]map[time.Weekday]model.DayWindow

// TimeOffIndex maps caregiver ID to approved time-off intervals.
type TimeOffIndex map[string][]model.Interval

// DetectConflicts checks an already-committed schedule for double-bookings,
// capacity overruns, availability-window violations and PTO overlaps.
// It returns violation records for the scheduler to act on; nothing here
// is an error condition.
func DetectConflicts(visits []model.Visit, caregivers []model.Caregiver, avail AvailabilityIndex, timeOff TimeOffIndex) []model.Violation {
	byCaregiver := map[string][]model.Visit{}
	for _, v := range visits {
		if v.CaregiverID == "" {
			continue
		}
		byCaregiver[v.CaregiverID] = append(byCaregiver[v.CaregiverID], v)
	}

	maxHours := map[string]float64{}
	for _, cg := range caregivers {
		maxHours[cg.ID] = cg.MaxHoursPerWeek
	}

	ids := make([]string, 0, len(byCaregiver))
	for id := range byCaregiver {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []model.Violation{}
	for _, cgID := range ids {
		vs := byCaregiver[cgID]
		sort.Slice(vs, func(i, j int) bool {
			if vs[i].Start.Equal(vs[j].Start) {
				return vs[i].ID < vs[j].ID
			}
			return vs[i].Start.Before(vs[j].Start)
		})

		// double-bookings: every overlapping pair is one violation
		for i := 0; i < len(vs); i++ {
			for j := i + 1; j < len(vs); j++ {
				if vs[i].Overlaps(vs[j]) {
					out = append(out, model.Violation{
						Type:        model.ViolationDoubleBooking,
						CaregiverID: cgID,
						VisitIDs:    []string{vs[i].ID, vs[j].ID},
						Detail:      fmt.Sprintf("visits %s and %s overlap", vs[i].ID, vs[j].ID),
					})
				}
			}
		}

		// capacity overrun over the window
		total := 0.0
		allIDs := make([]string, 0, len(vs))
		for _, v := range vs {
			total += v.DurationHours()
			allIDs = append(allIDs, v.ID)
		}
		if max, ok := maxHours[cgID]; ok && total > max+1e-9 {
			out = append(out, model.Violation{
				Type:        model.ViolationCapacityOverrun,
				CaregiverID: cgID,
				VisitIDs:    allIDs,
				Detail:      fmt.Sprintf("%.1fh scheduled against %.1fh max", total, max),
				ExcessHours: total - max,
			})
		}

		// availability windows and approved time off
		windows := avail[cgID]
		for _, v := range vs {
			if len(windows) > 0 {
				w, ok := windows[v.Start.Weekday()]
				if !ok || !w.Contains(v.Start, v.End) {
					out = append(out, model.Violation{
						Type:        model.ViolationAvailability,
						CaregiverID: cgID,
						VisitIDs:    []string{v.ID},
						Detail:      fmt.Sprintf("visit %s outside declared %s availability", v.ID, v.Start.Weekday()),
					})
				}
			}
			for _, iv := range timeOff[cgID] {
				if iv.Overlaps(v.Start, v.End) {
					out = append(out, model.Violation{
						Type:        model.ViolationTimeOff,
						CaregiverID: cgID,
						VisitIDs:    []string{v.ID},
						Detail:      fmt.Sprintf("visit %s overlaps approved time off", v.ID),
					})
				}
			}
		}
	}
	return out
}
