package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tonearm/internal/task"
)

func countingSource(n int) SourceFunc {
	return func(ctx context.Context, emit Emit) error {
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return nil
			}
			t := task.New(task.KindSingleton, []string{"/in/" + strconv.Itoa(i)})
			emit(t)
		}
		return nil
	}
}

func passthrough(counter *atomic.Int64) StageFunc {
	return func(ctx context.Context, t *task.Task, emit Emit) error {
		counter.Add(1)
		emit(t)
		return nil
	}
}

func TestRunMovesEveryTaskThroughAllStages(t *testing.T) {
	var middle, last atomic.Int64
	p, err := New(countingSource(25), 4, nil,
		Stage{Name: "transform", Workers: 3, Fn: passthrough(&middle)},
		Stage{Name: "collect", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			last.Add(1)
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if middle.Load() != 25 || last.Load() != 25 {
		t.Errorf("processed middle=%d last=%d, want 25/25", middle.Load(), last.Load())
	}
}

func TestRunSupportsFanOutAndDrop(t *testing.T) {
	var collected atomic.Int64
	p, err := New(countingSource(10), 2, nil,
		Stage{Name: "split", Workers: 2, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			// Odd inputs are dropped, even inputs fan out into two tasks.
			n, _ := strconv.Atoi(tk.Paths[0][len("/in/"):])
			if n%2 == 1 {
				return nil
			}
			emit(task.New(task.KindSingleton, tk.Paths))
			emit(task.New(task.KindSingleton, tk.Paths))
			return nil
		}},
		Stage{Name: "collect", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			collected.Add(1)
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if collected.Load() != 10 {
		t.Errorf("collected = %d, want 10 (5 even inputs doubled)", collected.Load())
	}
}

func TestRunFatalErrorCancelsAndPropagates(t *testing.T) {
	boom := errors.New("wiring broken")
	var afterFatal atomic.Int64
	p, err := New(countingSource(100), 1, nil,
		Stage{Name: "explode", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			if tk.Paths[0] == "/in/3" {
				return boom
			}
			emit(tk)
			return nil
		}},
		Stage{Name: "collect", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			afterFatal.Add(1)
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runErr := p.Run(context.Background())
	if !errors.Is(runErr, boom) {
		t.Fatalf("Run error = %v, want wrapped %v", runErr, boom)
	}
	if afterFatal.Load() >= 100 {
		t.Error("expected drain to stop processing after the fatal error")
	}
}

func TestRunExternalCancelDrainsWithoutError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var once sync.Once
	var applied atomic.Int64
	p, err := New(
		func(ctx context.Context, emit Emit) error {
			for i := 0; ; i++ {
				if ctx.Err() != nil {
					return nil
				}
				emit(task.New(task.KindSingleton, []string{"/in/" + strconv.Itoa(i)}))
			}
		},
		1, nil,
		Stage{Name: "slow", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			once.Do(func() { close(started) })
			time.Sleep(time.Millisecond)
			emit(tk)
			return nil
		}},
		Stage{Name: "apply", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error {
			applied.Add(1)
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	<-started
	cancel()

	select {
	case runErr := <-done:
		if runErr != nil {
			t.Fatalf("external cancel should not surface an error, got %v", runErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not drain within bounded time after cancel")
	}
}

func TestRunExactlyOnce(t *testing.T) {
	p, err := New(countingSource(1), 1, nil,
		Stage{Name: "collect", Workers: 1, Fn: func(ctx context.Context, tk *task.Task, emit Emit) error { return nil }},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error on second Run")
	}
}

func TestNewValidatesWiring(t *testing.T) {
	if _, err := New(nil, 1, nil, Stage{Name: "x", Fn: func(context.Context, *task.Task, Emit) error { return nil }}); err == nil {
		t.Error("expected error for nil source")
	}
	if _, err := New(countingSource(1), 1, nil); err == nil {
		t.Error("expected error for empty stage list")
	}
	if _, err := New(countingSource(1), 1, nil, Stage{Name: "broken"}); err == nil {
		t.Error("expected error for stage without transform")
	}
}
