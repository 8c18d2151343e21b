package pipeline

import "github.com/Lllllllleong/resumind/internal/models"

// Stage is a state of the ingestion run. Transitions only move forward.
type Stage int

const (
	StageIdle Stage = iota
	StageUploadingSource
	StageRasterizing
	StageUploadingPreview
	StagePersistingInitial
	StageAnalyzing
	StageParsingResult
	StagePersistingFinal
	StageComplete
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:              "Idle",
	StageUploadingSource:   "UploadingSource",
	StageRasterizing:       "Rasterizing",
	StageUploadingPreview:  "UploadingPreview",
	StagePersistingInitial: "PersistingInitial",
	StageAnalyzing:         "Analyzing",
	StageParsingResult:     "ParsingResult",
	StagePersistingFinal:   "PersistingFinal",
	StageComplete:          "Complete",
	StageFailed:            "Failed",
}

var stageLabels = map[Stage]string{
	StageUploadingSource:   "Uploading the file...",
	StageRasterizing:       "Converting to image...",
	StageUploadingPreview:  "Uploading the image...",
	StagePersistingInitial: "Preparing data...",
	StageAnalyzing:         "Analyzing...",
	StageParsingResult:     "Parsing feedback...",
	StagePersistingFinal:   "Saving feedback...",
	StageComplete:          "Analysis complete!",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether no further transition can follow s.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// Status is emitted on every transition of a run.
type Status struct {
	Stage Stage
	// FailedAt is the stage that was running when the run failed.
	FailedAt Stage
	// Reason is set only for StageFailed.
	Reason string
	// Resume is set only for StageComplete.
	Resume *models.Resume
}

// Label is the human readable text shown while the run is at this status.
func (s Status) Label() string {
	if s.Stage == StageFailed {
		return "Failed: " + s.Reason
	}
	return stageLabels[s.Stage]
}

// Event converts the status into its wire payload.
func (s Status) Event() models.StatusEvent {
	return models.StatusEvent{
		Stage:  s.Stage.String(),
		Label:  s.Label(),
		Failed: s.Stage == StageFailed,
	}
}

// Observer receives status updates. It is called synchronously from the run.
type Observer func(Status)
