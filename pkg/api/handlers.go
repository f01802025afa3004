package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	id, err := s.jobs.Submit(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, SubmitJobResponse{JobID: id})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.jobs.Get(id)
	if err != nil {
		s.writeJobLookupError(w, err)
		return
	}
	status, iteration, delta, jobErr := job.snapshot()
	resp := JobStatusResponse{
		JobID:        job.ID,
		Status:       status,
		Iteration:    iteration,
		LastMaxDelta: delta,
	}
	if jobErr != nil {
		resp.Error = jobErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJobPositions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.jobs.Get(id)
	if err != nil {
		s.writeJobLookupError(w, err)
		return
	}
	iteration, positions := job.positions()
	writeJSON(w, http.StatusOK, JobPositionsResponse{
		JobID:     job.ID,
		Iteration: iteration,
		Positions: positions,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		ActiveJobs: s.jobs.Count(),
	})
}

func (s *Server) writeJobLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
