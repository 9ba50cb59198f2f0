package dto

import "time"

// AdGateCompleteRequest carries the stage token issued when the stage started.
type AdGateCompleteRequest struct {
	Token string `json:"token" validate:"required"`
}

// AdGateStageResponse is returned when a stage starts.
type AdGateStageResponse struct {
	Stage        int       `json:"stage"`
	Token        string    `json:"token"`
	StartedAt    time.Time `json:"started_at"`
	AvailableAt  time.Time `json:"available_at"`
	DwellSeconds int       `json:"dwell_seconds"`
}

// AdGateStatusResponse reports progress through the unlock flow.
type AdGateStatusResponse struct {
	State         string     `json:"state"`
	Unlocked      bool       `json:"unlocked"`
	Video1Watched bool       `json:"video_1_watched"`
	Video2Watched bool       `json:"video_2_watched"`
	NextStage     int        `json:"next_stage,omitempty"`
	LastWatchedAt *time.Time `json:"last_watched_at,omitempty"`
}
