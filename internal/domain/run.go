package domain

import "time"

// AnalysisRun is the persisted artifact of one analysis pipeline run.
type AnalysisRun struct {
	ID         string    `json:"id"`
	TargetName string    `json:"target"`
	TargetPath string    `json:"target_path"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`

	Transits    []TransitTime  `json:"transits"`
	Skipped     []SkippedEpoch `json:"skipped,omitempty"`
	TTV         TTVSeries      `json:"ttv"`
	Constraints ConstraintGrid `json:"constraints"`
}

// SkippedEpoch records a transit window that produced no usable fit.
type SkippedEpoch struct {
	Epoch  int    `json:"epoch"`
	Reason string `json:"reason"`
}
