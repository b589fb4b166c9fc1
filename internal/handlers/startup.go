package handlers

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Startup step names, in the order main completes them.
const (
	StepRecordStore = "Record store"
	StepContent     = "Loading content"
	StepTemplates   = "Loading templates"
	StepAudio       = "Indexing audio cache"
	StepServer      = "Server ready"
)

// StartupStep is one initialization step.
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Startup tracks initialization progress for the health endpoint.
type Startup struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

// StartupStatus is the JSON body served by /healthz.
type StartupStatus struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// NewStartup returns a tracker for the given steps.
func NewStartup(steps ...string) *Startup {
	if len(steps) == 0 {
		steps = []string{StepRecordStore, StepContent, StepTemplates, StepAudio, StepServer}
	}
	s := &Startup{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the step in progress.
func (s *Startup) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress.
func (s *Startup) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	s.progress = (completed * 100) / len(s.steps)
}

// MarkReady marks the server as fully initialized.
func (s *Startup) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.steps {
		s.steps[i].Completed = true
	}
	s.ready = true
	s.current = StepServer
	s.progress = 100
}

// IsReady returns whether the server is fully initialized.
func (s *Startup) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Status returns a copy of the current progress.
func (s *Startup) Status() StartupStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StartupStatus{
		Ready:    s.ready,
		Current:  s.current,
		Progress: s.progress,
		Steps:    append([]StartupStep(nil), s.steps...),
	}
}

// Health reports startup progress: 200 once ready, 503 before.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := s.startup.Status()
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
		s.logger.Debug("health check before ready", zap.String("current", status.Current))
	}
	respondWithJSON(w, s.logger, code, status)
}
