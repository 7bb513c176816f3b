package opt

// Tuning carries the scoring weights and travel model parameters for one
// optimization pass. Zero values are filled from defaults so a partially
// specified tuning file still produces the reference behavior.
type Tuning struct {
	BaseScore           float64 `yaml:"baseScore" json:"baseScore"`
	TravelPenalty       float64 `yaml:"travelPenalty" json:"travelPenalty"`
	UtilizationPenalty  float64 `yaml:"utilizationPenalty" json:"utilizationPenalty"`
	TargetUtilization   float64 `yaml:"targetUtilization" json:"targetUtilization"`
	SkillTightnessBonus float64 `yaml:"skillTightnessBonus" json:"skillTightnessBonus"`
	SpeedKmh            float64 `yaml:"speedKmh" json:"speedKmh"`
	ArrivalBufferMin    float64 `yaml:"arrivalBufferMin" json:"arrivalBufferMin"`
}

func DefaultTuning() Tuning {
	return Tuning{
		BaseScore:           100,
		TravelPenalty:       0.5,
		UtilizationPenalty:  0.3,
		TargetUtilization:   85,
		SkillTightnessBonus: 2,
		SpeedKmh:            40,
		ArrivalBufferMin:    5,
	}
}

// Normalize fills unset fields from the defaults.
func (t Tuning) Normalize() Tuning {
	d := DefaultTuning()
	if t.BaseScore == 0 {
		t.BaseScore = d.BaseScore
	}
	if t.TravelPenalty == 0 {
		t.TravelPenalty = d.TravelPenalty
	}
	if t.UtilizationPenalty == 0 {
		t.UtilizationPenalty = d.UtilizationPenalty
	}
	if t.TargetUtilization == 0 {
		t.TargetUtilization = d.TargetUtilization
	}
	if t.SkillTightnessBonus == 0 {
		t.SkillTightnessBonus = d.SkillTightnessBonus
	}
	if t.SpeedKmh <= 0 {
		t.SpeedKmh = d.SpeedKmh
	}
	if t.ArrivalBufferMin == 0 {
		t.ArrivalBufferMin = d.ArrivalBufferMin
	}
	return t
}
