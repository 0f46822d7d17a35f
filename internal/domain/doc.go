// Package domain models flood-risk classification over hourly weather
// forecasts and its rendering as map-ready GeoJSON.
//
// # Data Flow
//
// A forecast is fetched per coordinate (see [ForecastSource]), optionally
// narrowed to one calendar day with [FilterByDate], reduced with [Summarize],
// classified with [Classify] and rendered with [ToFeature]:
//
//	ForecastSource → FilterByDate → Summarize → Classify → ToFeature
//
// # Forecast Series
//
// The upstream forecast API answers with parallel arrays indexed by hour:
//
//	time:                      ["2026-10-18T00:00", "2026-10-18T01:00", ...]
//	temperature_2m:            [21.4, null, ...]
//	precipitation:             [0.0, 1.2, ...]
//	precipitation_probability: [10, 35, ...]
//	wind_speed_10m:            [7.9, 8.3, ...]
//
// Values are zipped positionally into [HourlyRecord]. A null or missing value
// leaves that metric nil for that hour without shifting later hours.
//
// # Summaries
//
// Each metric is averaged over the hours where it is present. An empty series
// has nil averages but zero precipitation totals: "no rain observed" differs
// from "nothing to average".
//
//	temperature, wind speed: 1 decimal place
//	precipitation total/max: 2 decimal places
//	probability average:     whole percent
//
// # Risk Classification
//
// Thresholds are strict, so boundary values fall in the lower tier:
//
//	high:   precipitation > 20mm or probability > 70%
//	medium: precipitation > 10mm or probability > 50%
//	low:    otherwise
//
// Areas without a live forecast use [AdjustRiskByDay], which shifts a base
// level by -1, 0 or +1 derived from a seeded hash of the day offset. Identical
// offsets always produce identical shifts.
//
// # Rendering
//
// Styles by level (fill, opacity, stroke, stroke weight) and scores:
//
//	high:   #dc2626 0.4 #991b1b 2  score 0.85
//	medium: #f59e0b 0.3 #d97706 2  score 0.6
//	low:    #10b981 0.2 #059669 1  score 0.3
//
// Simplified features (low zoom) are centroid points with only the name and
// base level.
package domain
