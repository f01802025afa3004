package api

import "github.com/azybler/graphembed/pkg/vector"

// JobStatus is the lifecycle state of a submitted embedding job.
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// SubmitJobRequest is the POST /api/v1/jobs body: an edge list plus
// optional config overrides. NumNodes may be omitted; when zero, it is
// derived from the edge list as max(id)+1.
type SubmitJobRequest struct {
	Edges         [][2]uint32 `json:"edges"`
	NumNodes      int         `json:"num_nodes,omitempty"`
	Dimensions    int         `json:"dimensions,omitempty"`
	HintDimension int         `json:"hint_dimension,omitempty"`
	MaxIterations int         `json:"max_iterations,omitempty"`
	Index         string      `json:"index,omitempty"`
	Seed          int64       `json:"seed,omitempty"`
}

// SubmitJobResponse acknowledges a submitted job.
type SubmitJobResponse struct {
	JobID string `json:"job_id"`
}

// JobStatusResponse answers GET /api/v1/jobs/{id}.
type JobStatusResponse struct {
	JobID        string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	Iteration    int       `json:"iteration"`
	LastMaxDelta float32   `json:"last_max_delta"`
	Error        string    `json:"error,omitempty"`
}

// JobPositionsResponse answers GET /api/v1/jobs/{id}/positions.
type JobPositionsResponse struct {
	JobID     string          `json:"job_id"`
	Iteration int             `json:"iteration"`
	Positions []vector.Vector `json:"positions"`
}

// HealthResponse answers GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"`
	ActiveJobs int    `json:"active_jobs"`
}
