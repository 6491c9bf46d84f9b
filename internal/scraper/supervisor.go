// Package scraper runs the external listings scraper and tracks its progress.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"go.uber.org/zap"
)

// State is the lifecycle position of the supervisor.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var (
	// ErrAlreadyRunning is returned when a run is requested while one is active.
	ErrAlreadyRunning = errors.New("scraper is already running")

	// ErrNoCommand is returned when no scraper command is configured.
	ErrNoCommand = errors.New("no scraper command configured")
)

// Status is a snapshot of the current or last run.
type Status struct {
	State        State      `json:"state"`
	Status       string     `json:"status"`
	Progress     float64    `json:"progress"`
	Error        bool       `json:"error"`
	IsRunning    bool       `json:"isRunning"`
	LastStarted  *time.Time `json:"lastStarted"`
	LastFinished *time.Time `json:"lastFinished,omitempty"`
	ExitError    string     `json:"exitError,omitempty"`
	Output       []string   `json:"output,omitempty"`
}

// The scraper reports progress with lines like "STATUS: Page 3", "PROGRESS: 42.5" and "ERROR: 1".
var (
	statusLine   = regexp.MustCompile(`STATUS: (.+)`)
	progressLine = regexp.MustCompile(`PROGRESS: ([0-9.]+)`)
	errorLine    = regexp.MustCompile(`ERROR: ([01])`)
)

// Supervisor runs at most one scraper process at a time.
type Supervisor struct {
	conf    config.ScraperConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSupervisor creates an idle supervisor.
func NewSupervisor(conf config.ScraperConfig, m *metrics.Metrics, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf.OutputLines <= 0 {
		conf.OutputLines = 100
	}
	return &Supervisor{
		conf:    conf,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		status:  Status{State: StateIdle, Status: "Ready"},
	}
}

// Status returns a copy of the current status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.Output = append([]string(nil), s.status.Output...)
	return status
}

// Start launches a run in the background and returns the status at launch.
// The run is bound to ctx and to the configured timeout, not to the caller's
// request.
func (s *Supervisor) Start(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsRunning {
		return s.status, ErrAlreadyRunning
	}
	if len(s.conf.Command) == 0 {
		return s.status, ErrNoCommand
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if s.conf.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.conf.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	stdout := &lineWriter{emit: func(line string) { s.handleLine(line, false) }}
	stderr := &lineWriter{emit: func(line string) { s.handleLine(line, true) }}
	cmd := exec.CommandContext(runCtx, s.conf.Command[0], s.conf.Command[1:]...)
	cmd.Dir = s.conf.WorkDir
	cmd.Env = os.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Bounds how long output pipes held by orphaned children delay Wait.
	cmd.WaitDelay = 5 * time.Second
	if err := cmd.Start(); err != nil {
		cancel()
		return s.status, fmt.Errorf("failed to start scraper: %w", err)
	}

	started := s.now().UTC()
	s.status = Status{
		State:       StateRunning,
		Status:      "Starting",
		IsRunning:   true,
		LastStarted: &started,
	}
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("scraper started",
		zap.String("op", "scraper.Start"),
		zap.Strings("command", s.conf.Command),
	)

	go s.wait(cmd, []*lineWriter{stdout, stderr}, cancel, s.done)
	return s.status, nil
}

func (s *Supervisor) wait(cmd *exec.Cmd, outputs []*lineWriter, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	err := cmd.Wait()
	for _, w := range outputs {
		w.Flush()
	}

	finished := s.now().UTC()
	s.mu.Lock()
	s.status.IsRunning = false
	s.status.LastFinished = &finished
	switch {
	case err != nil:
		s.status.State = StateFailed
		s.status.Error = true
		s.status.Status = "Failed - see log"
		s.status.ExitError = err.Error()
	case s.status.Error:
		s.status.State = StateSucceeded
		s.status.Status = "Completed with errors - see log"
	default:
		s.status.State = StateSucceeded
		s.status.Status = "Completed"
		s.status.Progress = 100
	}
	state := s.status.State
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ScraperRuns.WithLabelValues(string(state)).Inc()
	}
	if err != nil {
		s.logger.Error("scraper failed",
			zap.String("op", "scraper.wait"),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("scraper finished",
		zap.String("op", "scraper.wait"),
		zap.String("state", string(state)),
	)
}

func (s *Supervisor) handleLine(line string, isStderr bool) {
	s.mu.Lock()
	if isStderr {
		s.status.Error = true
	}
	if m := statusLine.FindStringSubmatch(line); m != nil {
		s.status.Status = m[1]
	}
	if m := progressLine.FindStringSubmatch(line); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			s.status.Progress = p
		}
	}
	if m := errorLine.FindStringSubmatch(line); m != nil {
		s.status.Error = m[1] == "1"
	}
	s.status.Output = append(s.status.Output, line)
	if extra := len(s.status.Output) - s.conf.OutputLines; extra > 0 {
		s.status.Output = s.status.Output[extra:]
	}
	s.mu.Unlock()

	s.logger.Debug("scraper output",
		zap.String("op", "scraper.handleLine"),
		zap.Bool("stderr", isStderr),
		zap.String("line", line),
	)
}

// Wait blocks until the active run, if any, finishes or ctx is done.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts a run and waits for it, returning an error when it fails.
func (s *Supervisor) Run(ctx context.Context) (Status, error) {
	if _, err := s.Start(ctx); err != nil {
		return s.Status(), err
	}
	if err := s.Wait(ctx); err != nil {
		return s.Status(), err
	}
	status := s.Status()
	if status.State == StateFailed {
		return status, fmt.Errorf("scraper failed: %s", status.ExitError)
	}
	return status, nil
}

// Stop cancels the active run, if any.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil && s.status.IsRunning {
		s.cancel()
	}
}
