package opt

import "sort"

// EpochMode selects how an application's per-epoch objective values are
// reduced to one value before fairness combination. The exact arithmetic of
// each mode is the model builder's business; the composer only validates and
// forwards the mode.
type EpochMode string

const (
	// EpochAvg averages an application's objective across epochs (default).
	EpochAvg EpochMode = "avg"
	// EpochWorst scores an application by its worst epoch.
	EpochWorst EpochMode = "worst"
)

// validEpochModes maps accepted epoch mode strings.
// Empty defaults to avg.
var validEpochModes = map[EpochMode]bool{
	EpochAvg:   true,
	EpochWorst: true,
	"":         true,
}

// IsValidEpochMode reports whether mode is a recognized epoch combination
// mode.
func IsValidEpochMode(mode EpochMode) bool {
	return validEpochModes[mode]
}

// ValidEpochModes returns the recognized (non-empty) epoch modes, sorted.
func ValidEpochModes() []string {
	out := make([]string, 0, len(validEpochModes))
	for m := range validEpochModes {
		if m != "" {
			out = append(out, string(m))
		}
	}
	sort.Strings(out)
	return out
}

// FairnessMode selects how the applications' reduced objective values are
// combined into the single scalar objective.
type FairnessMode string

const (
	// FairnessWeighted combines objectives as a weighted sum (default).
	FairnessWeighted FairnessMode = "weighted"
	// FairnessMaxMin maximizes the worst-off application's weighted objective.
	FairnessMaxMin FairnessMode = "max-min"
	// FairnessPropFair requests proportional fairness. Recognized at this
	// layer; linear model builders may reject it as unsupported.
	FairnessPropFair FairnessMode = "prop-fair"
)

// validFairnessModes maps accepted fairness mode strings.
// Empty defaults to weighted.
var validFairnessModes = map[FairnessMode]bool{
	FairnessWeighted: true,
	FairnessMaxMin:   true,
	FairnessPropFair: true,
	"":               true,
}

// IsValidFairnessMode reports whether mode is a recognized fairness mode.
func IsValidFairnessMode(mode FairnessMode) bool {
	return validFairnessModes[mode]
}

// ValidFairnessModes returns the recognized (non-empty) fairness modes, sorted.
func ValidFairnessModes() []string {
	out := make([]string, 0, len(validFairnessModes))
	for m := range validFairnessModes {
		if m != "" {
			out = append(out, string(m))
		}
	}
	sort.Strings(out)
	return out
}
