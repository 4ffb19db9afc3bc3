// Package domain models flood risk derived from Open-Meteo hourly forecasts.
//
// # Data Source
//
// Hourly series come from the Open-Meteo forecast API
// (https://api.open-meteo.com/v1/forecast), requested over a fixed 3-day
// horizon with four candidate fields:
//
//	precipitation           total precipitation, mm per hour
//	rain                    liquid precipitation only, mm per hour (mandatory)
//	soil_moisture_0_to_1cm  top-layer soil moisture, 0-1 fraction (optional)
//	relative_humidity_2m    2m relative humidity, percent (optional)
//
// Soil moisture is not modeled everywhere. When the provider rejects the
// field, the client retries once without it and relative humidity divided by
// 100 stands in as the saturation proxy. Missing samples arrive as JSON
// nulls and are represented as nil pointers, never coerced to zero at the
// boundary.
//
// # Classification
//
// A window of hourly signals maps to an ordinal risk level from two pieces
// of evidence: the rainfall sum over the trailing 24 hours and the mean soil
// saturation. Thresholds, applied in order with the high rule overriding:
//
//	rainfall > 40mm OR saturation > 0.60  ->  medium
//	rainfall > 70mm OR saturation > 0.75  ->  high
//	otherwise                             ->  low
//
// A series shorter than the window sums whatever is available, without zero
// padding. Evidence is rounded for presentation (rainfall to 1 decimal,
// saturation to 2) after the thresholds are applied.
//
// # Null policy
//
// Aggregation treats missing samples per a single configurable policy:
// "skip" (default) excludes them, so averages divide by the count of present
// samples; "zero" counts them as zero, dividing by the full slice length.
// Sums are identical under both. The policy applies uniformly to the 24-hour
// window and to daily forecast buckets.
//
// # Forecast bucketing
//
// The 3-day timeline slices the series into whole 24-hour buckets starting
// at hour 0. Each bucket is classified with the thresholds above; a partial
// trailing day is dropped rather than aggregated short. The day label is the
// calendar date of the bucket's first ISO-8601 timestamp.
//
// # Area grid
//
// Area queries sample a fixed 3x3 grid of coordinates spaced 0.05 degrees
// around the requested center, enumerated latitude-offset outer and
// longitude-offset inner so the center is always index 4. Offsets are not
// range-checked; [NormalizeGrid] is the opt-in stage that clamps latitude
// and wraps longitude for callers near the poles or the antimeridian.
package domain
