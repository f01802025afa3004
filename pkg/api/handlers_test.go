package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestServer() *Server {
	cfg := DefaultConfig()
	return NewServer(cfg, NewJobManager(zerolog.Nop()), zerolog.Nop())
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want ok", resp.Status)
	}
}

func TestSubmitAndPollJobEndToEnd(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(SubmitJobRequest{
		Edges:         [][2]uint32{{0, 1}},
		MaxIterations: 10,
		Index:         "brute_force",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, want 202, body=%s", rec.Code, rec.Body.String())
	}
	var submitResp SubmitJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if submitResp.JobID == "" {
		t.Fatal("expected nonempty job id")
	}

	deadline := time.Now().Add(2 * time.Second)
	var statusResp JobStatusResponse
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+submitResp.JobID, nil)
		s.httpSrv.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status poll = %d, want 200", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &statusResp); err != nil {
			t.Fatalf("decode status response: %v", err)
		}
		if statusResp.Status == StatusDone {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if statusResp.Status != StatusDone {
		t.Fatalf("job status = %q, want done", statusResp.Status)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+submitResp.JobID+"/positions", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("positions status = %d, want 200", rec.Code)
	}
	var posResp JobPositionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &posResp); err != nil {
		t.Fatalf("decode positions response: %v", err)
	}
	if len(posResp.Positions) != 2 {
		t.Fatalf("len(positions) = %d, want 2", len(posResp.Positions))
	}
}

func TestJobStatusUnknownIDReturns404(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
