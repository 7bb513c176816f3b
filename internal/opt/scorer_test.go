package opt

import (
	"math"
	"testing"
	"time"

	"careassign/internal/model"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func visit(id string, startH, endH int, skills ...string) model.Visit {
	return model.Visit{
		ID:             id,
		ClientID:       "c-" + id,
		Location:       model.GeoPoint{Lat: 40.7, Lng: -74.0},
		Start:          at(startH, 0),
		End:            at(endH, 0),
		RequiredSkills: model.NewSkillSet(skills...),
	}
}

func caregiver(id string, maxHours, scheduled float64, skills ...string) model.Caregiver {
	return model.Caregiver{
		ID:              id,
		Skills:          model.NewSkillSet(skills...),
		MaxHoursPerWeek: maxHours,
		ScheduledHours:  scheduled,
	}
}

func TestScorerCapacityExclusion(t *testing.T) {
	// caregiver already at max; a 4-hour visit must be excluded
	cg := caregiver("g1", 40, 40)
	v := visit("v1", 9, 13)
	cands := ScoreCandidates(v, []model.Caregiver{cg}, NewState([]model.Caregiver{cg}), DefaultTuning())
	if len(cands) != 0 {
		t.Fatalf("expected no candidates at full capacity, got %d", len(cands))
	}
}

func TestScorerSkillExclusion(t *testing.T) {
	cg := caregiver("g1", 40, 0, "companionship")
	v := visit("v1", 9, 11, "wound-care")
	cands := ScoreCandidates(v, []model.Caregiver{cg}, NewState([]model.Caregiver{cg}), DefaultTuning())
	if len(cands) != 0 {
		t.Fatalf("missing required skill must be infeasible, got %d candidates", len(cands))
	}
}

func TestScorerNoRequiredSkillsTriviallyMatches(t *testing.T) {
	cg := caregiver("g1", 40, 0)
	v := visit("v1", 9, 11)
	cands := ScoreCandidates(v, []model.Caregiver{cg}, NewState([]model.Caregiver{cg}), DefaultTuning())
	if len(cands) != 1 || !cands[0].SkillMatch {
		t.Fatalf("visit with no required skills should match any caregiver: %+v", cands)
	}
}

func TestScorerReachabilityExclusion(t *testing.T) {
	cg := caregiver("g1", 40, 0)
	st := NewState([]model.Caregiver{cg})
	// prior visit ends 09:00 roughly 40 km away; next starts 09:30 nearby
	far := model.GeoPoint{Lat: 41.06, Lng: -74.0}
	end := at(9, 0)
	st["g1"].LastLoc = &far
	st["g1"].LastEnd = end

	v := visit("v1", 9, 11)
	v.Start = at(9, 30)
	v.End = at(11, 0)
	cands := ScoreCandidates(v, []model.Caregiver{cg}, st, DefaultTuning())
	if len(cands) != 0 {
		t.Fatalf("unreachable caregiver should be excluded, got %+v", cands)
	}

	// with no prior committed visit the same caregiver is always reachable
	cands = ScoreCandidates(v, []model.Caregiver{cg}, NewState([]model.Caregiver{cg}), DefaultTuning())
	if len(cands) != 1 {
		t.Fatalf("caregiver without prior visit must be reachable")
	}
}

func TestScorerScoreFormula(t *testing.T) {
	// no last location: travel collapses to the 5-minute buffer
	cg := caregiver("g1", 40, 30, "wound-care", "medication")
	v := visit("v1", 9, 13, "wound-care") // 4h -> util after = 85%
	cands := ScoreCandidates(v, []model.Caregiver{cg}, NewState([]model.Caregiver{cg}), DefaultTuning())
	if len(cands) != 1 {
		t.Fatalf("expected one candidate, got %d", len(cands))
	}
	// 100 - 0.5*5 - 0.3*|85-85| + 2*(1-1) = 97.5
	if cands[0].Score != 97.5 {
		t.Fatalf("want score 97.5, got %v", cands[0].Score)
	}
	if math.Abs(cands[0].UtilizationAfter-85) > 1e-9 {
		t.Fatalf("want utilization 85, got %v", cands[0].UtilizationAfter)
	}
}

func TestScorerExtraSkillsPenalized(t *testing.T) {
	tight := caregiver("g1", 40, 0, "wound-care")
	broad := caregiver("g2", 40, 0, "wound-care", "medication", "mobility")
	v := visit("v1", 9, 11, "wound-care")
	roster := []model.Caregiver{tight, broad}
	cands := ScoreCandidates(v, roster, NewState(roster), DefaultTuning())
	if len(cands) != 2 {
		t.Fatalf("both caregivers feasible, got %d", len(cands))
	}
	if cands[0].CaregiverID != "g1" {
		t.Fatalf("tighter skill match should rank first, got %s", cands[0].CaregiverID)
	}
	if cands[0].Score-cands[1].Score != 4 {
		t.Fatalf("two extra skills should cost 4 points, diff %v", cands[0].Score-cands[1].Score)
	}
}

func TestScorerTieBreakByCaregiverID(t *testing.T) {
	a := caregiver("g2", 40, 0)
	b := caregiver("g1", 40, 0)
	v := visit("v1", 9, 11)
	roster := []model.Caregiver{a, b}
	cands := ScoreCandidates(v, roster, NewState(roster), DefaultTuning())
	if len(cands) != 2 || cands[0].CaregiverID != "g1" {
		t.Fatalf("equal scores must order by caregiver ID: %+v", cands)
	}
}
