// Package domain models orphaned oil/gas wells and their groundwater
// pollution risk assessment.
//
// # Scoring Rubric
//
// Each well receives five independent component scores whose maxima sum
// to 100 points:
//
//	Aquifer vulnerability    max 30   20 flat on intersection + 10·exp(-d/k) decay
//	Surface water proximity  max 20   20·exp(-d/k2) against the nearest flowline
//	Well integrity           max 20   min(10, 10·age/50) + 10·max(0, 1 - casing/1500)
//	Historical spills        max 15   fixed placeholder until spill data is sourced
//	Human receptors          max 15   3 points per domestic well within radius, 5+ → max
//
// The final score is the plain sum of component values, always in [0, 100].
// Risk tiers are assigned by configurable thresholds (default High ≥ 65,
// Moderate ≥ 35, Low below).
//
// # Coordinate Convention
//
// All geometry is expected in a projected CRS with meter units (the
// reference datasets are reprojected to EPSG:3857 upstream). Coordinates
// that look geographic (degree ranges) are rejected before scoring, because
// every distance-based component would otherwise silently read degrees as
// meters.
//
// # DRASTIC Vulnerability
//
// Wells may carry a DRASTIC vulnerability class supplied by the ingestion
// collaborator. The class maps to a multiplicative factor on the enhanced
// leak probability:
//
//	Very High 1.0 | High 0.8 | Moderate 0.6 | Low 0.4 | Very Low 0.2
//
// Wells without a class use factor 1.0, leaving the base sigmoid unchanged.
//
// # Determinism
//
// A WellResult is a pure function of the well's attributes, the layer
// geometries, and the active configuration. Result sets are cached under a
// SHA-256 fingerprint of that input content; identical inputs always hash to
// the same fingerprint and reuse the cached artifact. Monte Carlo sampling
// is the only source of randomness and is reproducible whenever a seed is
// configured.
package domain
