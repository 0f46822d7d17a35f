package domain

import "math"

// DaySummary aggregates a forecast series. Averages are nil when no hour
// carried the metric; precipitation totals are zero in that case.
type DaySummary struct {
	AvgTemperature              *float64 `json:"avg_temperature"`
	TotalPrecipitation          float64  `json:"total_precipitation"`
	MaxPrecipitation            float64  `json:"max_precipitation"`
	AvgWindSpeed                *float64 `json:"avg_wind_speed"`
	AvgPrecipitationProbability *int     `json:"avg_precipitation_probability"`
}

// Summarize reduces a series to a DaySummary. Each metric is averaged only over
// the hours where it is present.
func Summarize(series ForecastSeries) DaySummary {
	var (
		temp, wind, precip stat
		probSum, probCount int
		maxPrecip          float64
		precipSeen         bool
	)

	for _, r := range series {
		if r.Temperature != nil {
			temp.add(*r.Temperature)
		}
		if r.WindSpeed != nil {
			wind.add(*r.WindSpeed)
		}
		if r.Precipitation != nil {
			v := *r.Precipitation
			precip.add(v)
			if !precipSeen || v > maxPrecip {
				maxPrecip = v
			}
			precipSeen = true
		}
		if r.PrecipitationProbability != nil {
			probSum += *r.PrecipitationProbability
			probCount++
		}
	}

	s := DaySummary{
		AvgTemperature: temp.mean(1),
		AvgWindSpeed:   wind.mean(1),
	}
	if precipSeen {
		s.TotalPrecipitation = roundTo(precip.sum, 2)
		s.MaxPrecipitation = roundTo(maxPrecip, 2)
	}
	if probCount > 0 {
		avg := int(math.Round(float64(probSum) / float64(probCount)))
		s.AvgPrecipitationProbability = &avg
	}
	return s
}

// AvgProbability returns the average precipitation probability, or 0 when the
// series carried none.
func (s DaySummary) AvgProbability() float64 {
	if s.AvgPrecipitationProbability == nil {
		return 0
	}
	return float64(*s.AvgPrecipitationProbability)
}

type stat struct {
	sum   float64
	count int
}

func (s *stat) add(v float64) {
	s.sum += v
	s.count++
}

func (s stat) mean(decimals int) *float64 {
	if s.count == 0 {
		return nil
	}
	v := roundTo(s.sum/float64(s.count), decimals)
	return &v
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
