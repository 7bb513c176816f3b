package model

import (
	"encoding/json"
	"sort"
	"time"
)

// Core domain types for the visit assignment optimizer.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SkillSet is a set of skill tags with case-sensitive membership.
type SkillSet map[string]struct{}

func NewSkillSet(tags ...string) SkillSet {
	s := SkillSet{}
	for _, t := range tags {
		if t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

func (s SkillSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// ContainsAll reports whether every tag of other is present in s.
// An empty or nil other is trivially contained.
func (s SkillSet) ContainsAll(other SkillSet) bool {
	for t := range other {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}

func (s SkillSet) Len() int { return len(s) }

// List returns the tags sorted for deterministic output.
func (s SkillSet) List() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *SkillSet) UnmarshalJSON(b []byte) error {
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return err
	}
	*s = NewSkillSet(tags...)
	return nil
}

// Visit is a scheduled home-care encounter. CaregiverID is empty while
// the visit is unassigned.
type Visit struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"orgId"`
	ClientID       string    `json:"clientId"`
	ClientName     string    `json:"clientName,omitempty"`
	Location       GeoPoint  `json:"location"`
	Start          time.Time `json:"scheduledStart"`
	End            time.Time `json:"scheduledEnd"`
	ServiceType    string    `json:"serviceType,omitempty"`
	RequiredSkills SkillSet  `json:"requiredSkills,omitempty"`
	CaregiverID    string    `json:"caregiverId,omitempty"`
}

func (v Visit) DurationMinutes() float64 { return v.End.Sub(v.Start).Minutes() }

func (v Visit) DurationHours() float64 { return v.End.Sub(v.Start).Hours() }

// Overlaps reports whether the [Start, End) intervals of two visits intersect.
func (v Visit) Overlaps(o Visit) bool {
	return v.Start.Before(o.End) && o.Start.Before(v.End)
}

// Caregiver is a care worker eligible for assignment. ScheduledHours,
// LastLocation and LastVisitEnd are aggregated over the optimization
// window when loaded and serve as the engine's starting state.
type Caregiver struct {
	ID              string     `json:"id"`
	OrgID           string     `json:"orgId"`
	Name            string     `json:"name,omitempty"`
	Skills          SkillSet   `json:"skills,omitempty"`
	MaxHoursPerWeek float64    `json:"maxHoursPerWeek"`
	ScheduledHours  float64    `json:"scheduledHours"`
	LastLocation    *GeoPoint  `json:"lastLocation,omitempty"`
	LastVisitEnd    *time.Time `json:"lastVisitEnd,omitempty"`
}

// CandidateAssignment is an ephemeral scored pairing of one visit to one
// caregiver. Produced by the scorer, consumed by the engine, never persisted.
type CandidateAssignment struct {
	VisitID          string  `json:"visitId"`
	CaregiverID      string  `json:"caregiverId"`
	Score            float64 `json:"score"`
	TravelMinutes    float64 `json:"travelMinutes"`
	UtilizationAfter float64 `json:"utilizationAfter"`
	SkillMatch       bool    `json:"skillMatch"`
}

// PassMetrics aggregates one completed optimization pass.
type PassMetrics struct {
	TotalVisits       int                `json:"totalVisits"`
	AssignedVisits    int                `json:"assignedVisits"`
	UnassignedVisits  int                `json:"unassignedVisits"`
	AssignmentRate    float64            `json:"assignmentRate"`
	AvgTravelMinutes  float64            `json:"avgTravelMinutes"`
	AvgScore          float64            `json:"avgScore"`
	Utilization       map[string]float64 `json:"utilization"`
	UtilizationStdDev float64            `json:"utilizationStdDev"`
}

// OptimizationResult is the output of a full pass.
type OptimizationResult struct {
	Assignments []CandidateAssignment `json:"assignments"`
	Unassigned  []Visit               `json:"unassignedVisits"`
	Metrics     PassMetrics           `json:"metrics"`
}

type ViolationType string

const (
	ViolationDoubleBooking   ViolationType = "double_booking"
	ViolationCapacityOverrun ViolationType = "capacity_overrun"
	ViolationAvailability    ViolationType = "availability_window"
	ViolationTimeOff         ViolationType = "time_off"
)

// Violation is a detected schedule conflict. Violations are data for the
// scheduler to act on, not errors.
type Violation struct {
	Type        ViolationType `json:"type"`
	CaregiverID string        `json:"caregiverId"`
	VisitIDs    []string      `json:"visitIds"`
	Detail      string        `json:"detail,omitempty"`
	ExcessHours float64       `json:"excessHours,omitempty"`
}

// DayWindow is a caregiver's declared availability for one weekday,
// expressed as HH:MM times of day.
type DayWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether both times of day fall inside the window.
func (w DayWindow) Contains(start, end time.Time) bool {
	ws, err1 := time.Parse("15:04", w.Start)
	we, err2 := time.Parse("15:04", w.End)
	if err1 != nil || err2 != nil {
		return false
	}
	sMin := start.Hour()*60 + start.Minute()
	eMin := end.Hour()*60 + end.Minute()
	wsMin := ws.Hour()*60 + ws.Minute()
	weMin := we.Hour()*60 + we.Minute()
	return sMin >= wsMin && eMin <= weMin && sMin <= eMin
}

// Interval is a half-open [Start, End) time range, used for approved time off.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && iv.Start.Before(end)
}
