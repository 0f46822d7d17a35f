package domain

import (
	"fmt"
	"strings"
)

// RiskLevel is an ordinal flood-risk category.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// Classification thresholds. Comparisons are strict.
const (
	HighPrecipitationMM   = 20.0
	HighProbabilityPct    = 70.0
	MediumPrecipitationMM = 10.0
	MediumProbabilityPct  = 50.0
)

const (
	riskLevelCount         = 3
	dayShiftSeedMultiplier = 1000
)

var riskNames = [riskLevelCount]string{"low", "medium", "high"}

func (l RiskLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
	return riskNames[l]
}

// Valid reports whether l is one of the three defined levels.
func (l RiskLevel) Valid() bool {
	return l >= RiskLow && l <= RiskHigh
}

// Score is the numeric weight shown alongside the level on the map.
func (l RiskLevel) Score() float64 {
	switch l {
	case RiskHigh:
		return 0.85
	case RiskMedium:
		return 0.6
	default:
		return 0.3
	}
}

func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("marshal risk level %d: %w", int(l), ErrInvalidInput)
	}
	return []byte(riskNames[l]), nil
}

func (l *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseRiskLevel accepts "low", "medium" or "high" in any case.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for i, name := range riskNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return RiskLevel(i), nil
		}
	}
	return RiskLow, fmt.Errorf("risk level %q: %w", s, ErrInvalidInput)
}

// Classify maps precipitation statistics to a risk level.
//
//	high   if precipitation > 20mm or probability > 70%
//	medium if precipitation > 10mm or probability > 50%
//	low    otherwise
func Classify(totalPrecipitationMM, avgProbabilityPct float64) RiskLevel {
	switch {
	case totalPrecipitationMM > HighPrecipitationMM || avgProbabilityPct > HighProbabilityPct:
		return RiskHigh
	case totalPrecipitationMM > MediumPrecipitationMM || avgProbabilityPct > MediumProbabilityPct:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AdjustRiskByDay shifts base by -1, 0 or +1 levels for days other than today.
// The shift is a pure function of daysFromToday, so a given offset always
// produces the same result in every process.
func AdjustRiskByDay(base RiskLevel, daysFromToday int) RiskLevel {
	if daysFromToday == 0 {
		return base
	}
	h := splitmix64(uint64(int64(daysFromToday) * dayShiftSeedMultiplier))
	variation := int(h%riskLevelCount) - 1

	idx := int(base) + variation
	if idx < int(RiskLow) {
		idx = int(RiskLow)
	}
	if idx > int(RiskHigh) {
		idx = int(RiskHigh)
	}
	return RiskLevel(idx)
}

// splitmix64 is the finalizer from Steele et al., used as a stateless seeded hash.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
