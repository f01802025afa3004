package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/azybler/graphembed/pkg/embedder"
	"github.com/azybler/graphembed/pkg/graphview"
	"github.com/azybler/graphembed/pkg/vector"
)

// ErrJobNotFound is returned by JobManager.Get for an unknown id.
var ErrJobNotFound = errors.New("job not found")

// Job is one in-flight or completed embedding run. Engine, status, and
// error are guarded by mu since the run goroutine and HTTP handlers
// access them concurrently.
type Job struct {
	ID string

	mu     sync.Mutex
	status JobStatus
	engine *embedder.Engine
	err    error
}

func (j *Job) snapshot() (JobStatus, int, float32, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var iteration int
	var delta float32
	if j.engine != nil {
		iteration = j.engine.Iteration()
		delta = j.engine.LastMaxDelta()
	}
	return j.status, iteration, delta, j.err
}

func (j *Job) positions() (int, []vector.Vector) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.engine == nil {
		return 0, nil
	}
	return j.engine.Iteration(), j.engine.Positions()
}

func (j *Job) setStatus(s JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = s
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusFailed
	j.err = err
}

// JobManager runs embedding jobs as background goroutines and serves
// their status/positions to the HTTP layer. It is the teacher's
// request-scoped worker pattern turned into a long-lived, job-indexed
// registry, since an embedding run outlives a single HTTP request.
type JobManager struct {
	log zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager constructs an empty job registry.
func NewJobManager(log zerolog.Logger) *JobManager {
	return &JobManager{log: log, jobs: make(map[string]*Job)}
}

// Submit validates the request, builds the graph view and engine, and
// starts the run in a new goroutine, returning the job id immediately.
func (m *JobManager) Submit(req SubmitJobRequest) (string, error) {
	if len(req.Edges) == 0 && req.NumNodes == 0 {
		return "", errors.New("request must specify edges or num_nodes")
	}
	dim := req.Dimensions
	if dim == 0 {
		dim = 2
	}
	hint := req.HintDimension
	if hint == 0 {
		hint = dim
	}
	numNodes := req.NumNodes
	if numNodes == 0 {
		for _, e := range req.Edges {
			if int(e[0])+1 > numNodes {
				numNodes = int(e[0]) + 1
			}
			if int(e[1])+1 > numNodes {
				numNodes = int(e[1]) + 1
			}
		}
	}

	cfg := embedder.DefaultConfig()
	cfg.D = dim
	cfg.H = hint
	if req.MaxIterations > 0 {
		cfg.MaxIterations = req.MaxIterations
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	switch req.Index {
	case "brute_force":
		cfg.Index = embedder.IndexBruteForce
	case "dynamic":
		cfg.Index = embedder.IndexDynamic
	case "tree", "":
		cfg.Index = embedder.IndexTree
	default:
		return "", errors.New("unknown index variant: " + req.Index)
	}

	graph := graphview.Build(req.Edges, numNodes, cfg.D, cfg.H)

	id, err := newJobID()
	if err != nil {
		return "", err
	}
	job := &Job{ID: id, status: StatusQueued}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	go m.run(job, graph, cfg)
	return id, nil
}

func (m *JobManager) run(job *Job, graph *graphview.Graph, cfg embedder.Config) {
	job.mu.Lock()
	job.engine = embedder.NewRandom(graph, cfg, m.log)
	job.status = StatusRunning
	job.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			job.fail(errors.New("embedding run panicked"))
			m.log.Error().Interface("panic", rec).Str("job_id", job.ID).Msg("job panicked")
		}
	}()

	job.engine.Embed(nil)
	job.setStatus(StatusDone)
}

// Get returns the job with the given id, or ErrJobNotFound.
func (m *JobManager) Get(id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Count returns the number of jobs not yet in a terminal state.
func (m *JobManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := 0
	for _, j := range m.jobs {
		j.mu.Lock()
		if j.status == StatusQueued || j.status == StatusRunning {
			active++
		}
		j.mu.Unlock()
	}
	return active
}

func newJobID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
