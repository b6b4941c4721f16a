// Package domain models the urban heat inputs and the Urban
// Thermal/Environmental Index (UTEI) derived from them.
//
// # Inputs
//
// Training rows come from a field survey merged with satellite products and
// carry air temperature as the regression target:
//
//	Temperature, Humidity, Latitude, Longitude, LST_C, NDVI
//
// Source headers vary between exports. Headers are trimmed and inner spaces
// become underscores, then a fixed rename map applies:
//
//	LST            -> LST_C
//	Latitude_(°N)  -> Latitude
//	Longitude_(°E) -> Longitude
//
// Prediction rows are satellite-only grids: LST_C and NDVI are required,
// Latitude/Longitude are optional and only feed the geographic outputs.
//
// # Humidity
//
// Humidity is not measured per pixel. Training rows are overwritten and
// prediction rows without the column get the same constant (60 by default).
// A constant feature has zero variance, so the fitted model gives it a zero
// coefficient and its normalised value is 0 for every row.
//
// # Normalisation
//
// Each index input is min-max scaled over the prediction table itself:
//
//	norm(x) = (x - min) / (max - min)
//
// Missing values are skipped when finding min and max and stay missing. A
// constant column has no range; every value maps to 0. See [MinMax].
//
// # Index
//
//	UTEI = LST_norm + Humidity_norm - NDVI_norm
//
// The weights are a working definition from the survey notebook and are kept
// literally. Higher values mean hotter, more humid, less vegetated ground.
// Range is [-1, 2]. See [UTEI].
package domain
