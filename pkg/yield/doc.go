// Package yield watches tablet-press process signals for drift, predicts
// batch yield and proposes SOP-bounded parameter adjustments.
package yield
