package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tonearm/internal/logging"
	"tonearm/internal/services"
	"tonearm/internal/task"
)

// Emit hands a task to the next stage. It blocks when the downstream
// queue is full and silently drops the task once the run is cancelled.
type Emit func(*task.Task)

// SourceFunc produces the initial tasks. It should return promptly when
// ctx is cancelled; a non-nil error is treated as fatal for the run.
type SourceFunc func(ctx context.Context, emit Emit) error

// StageFunc transforms one task, emitting zero or more tasks downstream.
// A non-nil error is fatal for the whole run; per-task problems must be
// handled inside the stage by failing or dropping the task instead.
type StageFunc func(ctx context.Context, t *task.Task, emit Emit) error

// Stage is one transform step, optionally replicated into parallel
// workers. The final stage should use a single worker when it serializes
// user-visible output.
type Stage struct {
	Name    string
	Workers int
	Fn      StageFunc
}

// Pipeline wires a source and an ordered list of stages with bounded
// hand-off channels. It holds no cross-run state; build one per run.
type Pipeline struct {
	source SourceFunc
	stages []Stage
	buffer int
	logger *slog.Logger

	mu    sync.Mutex
	fatal error
	ran   bool
}

// New constructs a pipeline. buffer bounds each hand-off channel.
func New(source SourceFunc, buffer int, logger *slog.Logger, stages ...Stage) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("pipeline requires a source")
	}
	if len(stages) == 0 {
		return nil, errors.New("pipeline requires at least one stage")
	}
	for _, s := range stages {
		if s.Fn == nil {
			return nil, fmt.Errorf("stage %q has no transform", s.Name)
		}
	}
	if buffer <= 0 {
		buffer = 1
	}
	return &Pipeline{
		source: source,
		stages: stages,
		buffer: buffer,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Run drives the pipeline to completion. It blocks until the source is
// exhausted and every in-flight task has drained through all stages, or
// until a fatal error or cancellation triggers drain-and-stop. Safe to
// call exactly once.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.ran {
		p.mu.Unlock()
		return errors.New("pipeline already ran")
	}
	p.ran = true
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// One hand-off channel in front of every stage.
	channels := make([]chan *task.Task, len(p.stages))
	for i := range channels {
		channels[i] = make(chan *task.Task, p.buffer)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(channels[0])
		if err := p.source(runCtx, p.emit(runCtx, channels[0])); err != nil {
			p.recordFatal(cancel, "source", err)
		}
	}()

	for i, s := range p.stages {
		var out chan *task.Task
		if i+1 < len(p.stages) {
			out = channels[i+1]
		}
		p.runStage(runCtx, cancel, &wg, s, channels[i], out)
	}

	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fatal
}

// runStage spawns the stage's workers plus a closer goroutine that
// shuts the downstream channel once every worker has returned.
func (p *Pipeline) runStage(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup, s Stage, in <-chan *task.Task, out chan *task.Task) {
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	stageCtx := services.WithStage(ctx, s.Name)
	logger := logging.WithContext(stageCtx, p.logger)

	emit := Emit(func(*task.Task) {})
	if out != nil {
		emit = p.emit(ctx, out)
	}

	var stageWG sync.WaitGroup
	stageWG.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer stageWG.Done()
			for t := range in {
				if ctx.Err() != nil {
					// Run cancelled: keep consuming so blocked
					// upstream senders unblock, but do no work.
					logger.Debug("dropping task during drain", logging.String(logging.FieldTaskID, t.ID))
					continue
				}
				unitCtx := services.WithTaskID(stageCtx, t.ID)
				if err := s.Fn(unitCtx, t, emit); err != nil {
					p.recordFatal(cancel, s.Name, err)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		stageWG.Wait()
		if out != nil {
			close(out)
		}
	}()
}

func (p *Pipeline) emit(ctx context.Context, ch chan *task.Task) Emit {
	return func(t *task.Task) {
		select {
		case ch <- t:
		case <-ctx.Done():
		}
	}
}

func (p *Pipeline) recordFatal(cancel context.CancelFunc, stage string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	p.mu.Lock()
	if p.fatal == nil {
		p.fatal = fmt.Errorf("stage %s: %w", stage, err)
		p.logger.Error("fatal pipeline error; draining",
			logging.String(logging.FieldStage, stage),
			logging.Error(err),
		)
	}
	p.mu.Unlock()
	cancel()
}
