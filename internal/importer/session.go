package importer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"tonearm/internal/catalog"
	"tonearm/internal/config"
	"tonearm/internal/dedupe"
	"tonearm/internal/hooks"
	"tonearm/internal/logging"
	"tonearm/internal/media"
	"tonearm/internal/musicdb"
	"tonearm/internal/organizer"
	"tonearm/internal/pipeline"
	"tonearm/internal/scoring"
	"tonearm/internal/tagio"
	"tonearm/internal/task"
)

// Catalog is the slice of the catalog store a session depends on.
// *catalog.Store satisfies it; tests substitute fakes.
type Catalog interface {
	FindByIdentity(ctx context.Context, identityKey string) ([]media.Entry, error)
	Upsert(ctx context.Context, entry *media.Entry) error
	Remove(ctx context.Context, id int64) error
	RememberSource(ctx context.Context, path, sourceID string) error
	PriorSourceID(ctx context.Context, paths []string) (string, error)
}

// ChooseFunc decides a task's fate given its ranked candidates. It is
// only consulted when no candidate clears the acceptance threshold and
// quiet mode is off.
type ChooseFunc func(ctx context.Context, t *task.Task) task.Choice

// Decisions bundles the interactive callbacks a session may consult.
// Either may be nil; quiet mode never invokes them.
type Decisions struct {
	Choose    ChooseFunc
	Duplicate dedupe.Callback
}

// TaskFailure is one failed task in the run summary.
type TaskFailure struct {
	Description string
	Category    string
	Err         error
}

// Summary is the outcome of a completed run.
type Summary struct {
	Applied      int
	Skipped      int
	Failed       int
	FileFailures []task.FileFailure
	FailedTasks  []TaskFailure
}

// Session orchestrates one import run. Build one per run; Run is safe
// to call exactly once.
type Session struct {
	cfg       *config.Config
	paths     []string
	reader    tagio.Reader
	writer    tagio.Writer
	source    musicdb.Source
	store     Catalog
	organizer *organizer.Organizer
	engine    *scoring.Engine
	resolver  *dedupe.Resolver
	registry  *hooks.Registry
	decisions Decisions
	logger    *slog.Logger

	locks    *catalog.KeyLocks
	lockKeys sync.Map

	mu      sync.Mutex
	ran     bool
	summary Summary
}

// Options carries the collaborators a session is built from. Nil
// Reader, Writer, and Hooks fall back to defaults; Source and Store are
// required when autotagging or applying, respectively.
type Options struct {
	Config    *config.Config
	Paths     []string
	Reader    tagio.Reader
	Writer    tagio.Writer
	Source    musicdb.Source
	Store     Catalog
	Hooks     *hooks.Registry
	Decisions Decisions
	Logger    *slog.Logger
}

// NewSession builds a session bound to one run's configuration.
func NewSession(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("session requires a config")
	}
	if len(opts.Paths) == 0 {
		return nil, errors.New("session requires at least one path to import")
	}
	if opts.Store == nil {
		return nil, errors.New("session requires a catalog")
	}
	if cfg.Import.Autotag && opts.Source == nil {
		return nil, errors.New("autotagging requires a metadata source")
	}

	reader := opts.Reader
	if reader == nil {
		reader = tagio.NewFileReader()
	}
	writer := opts.Writer
	if writer == nil {
		writer = tagio.NewFileWriter()
	}
	registry := opts.Hooks
	if registry == nil {
		registry = hooks.NewRegistry()
	}

	decisions := opts.Decisions
	if cfg.Import.Quiet {
		decisions = Decisions{}
	}

	dupAction := dedupe.Action(cfg.Import.DuplicateAction)
	if cfg.Import.Quiet && dupAction == dedupe.ActionAsk {
		// Quiet runs have nobody to ask; skipping is the safe default.
		dupAction = dedupe.ActionSkip
	}

	return &Session{
		cfg:       cfg,
		paths:     opts.Paths,
		reader:    reader,
		writer:    writer,
		source:    opts.Source,
		store:     opts.Store,
		organizer: organizer.New(cfg.Paths.LibraryDir, cfg.Import.Copy, opts.Logger),
		engine:    scoring.NewEngine(scoring.WeightsFromConfig(cfg.Scoring)),
		resolver:  dedupe.NewResolver(opts.Store, dupAction, decisions.Duplicate, opts.Logger),
		registry:  registry,
		decisions: decisions,
		logger:    logging.NewComponentLogger(opts.Logger, "importer"),
		locks:     catalog.NewKeyLocks(),
	}, nil
}

// Run drives the import to completion and returns the per-task
// summary. A fatal pipeline error is returned alongside whatever
// summary had accumulated; per-task failures are not errors here.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return Summary{}, errors.New("session already ran")
	}
	s.ran = true
	s.mu.Unlock()

	threads := s.cfg.Import.Threads
	if threads < 1 {
		threads = 1
	}

	p, err := pipeline.New(s.scan, s.cfg.Import.QueueSize, s.logger,
		pipeline.Stage{Name: "read", Workers: threads, Fn: s.readStage},
		pipeline.Stage{Name: "group", Workers: 1, Fn: s.groupStage},
		pipeline.Stage{Name: "lookup", Workers: threads, Fn: s.lookupStage},
		pipeline.Stage{Name: "choose", Workers: 1, Fn: s.chooseStage},
		pipeline.Stage{Name: "resolve", Workers: threads, Fn: s.resolveStage},
		pipeline.Stage{Name: "apply", Workers: 1, Fn: s.applyStage},
	)
	if err != nil {
		return Summary{}, err
	}

	s.registry.Emit(ctx, hooks.Event{Type: hooks.EventImportBegin})
	runErr := p.Run(ctx)

	s.mu.Lock()
	summary := s.summary
	s.mu.Unlock()

	s.registry.Emit(ctx, hooks.Event{Type: hooks.EventImportComplete, Payload: summary})
	return summary, runErr
}

func (s *Session) recordApplied(ctx context.Context, t *task.Task) {
	s.mu.Lock()
	s.summary.Applied++
	s.summary.FileFailures = append(s.summary.FileFailures, t.FileFailures...)
	s.mu.Unlock()
	s.registry.Emit(ctx, hooks.Event{Type: hooks.EventTaskApplied, Task: t})
}

func (s *Session) recordSkipped(ctx context.Context, t *task.Task) {
	s.mu.Lock()
	s.summary.Skipped++
	s.summary.FileFailures = append(s.summary.FileFailures, t.FileFailures...)
	s.mu.Unlock()
	s.registry.Emit(ctx, hooks.Event{Type: hooks.EventTaskSkipped, Task: t})
}

func (s *Session) recordFailed(ctx context.Context, t *task.Task, category string) {
	s.mu.Lock()
	s.summary.Failed++
	s.summary.FileFailures = append(s.summary.FileFailures, t.FileFailures...)
	s.summary.FailedTasks = append(s.summary.FailedTasks, TaskFailure{
		Description: t.Describe(),
		Category:    category,
		Err:         t.Err,
	})
	s.mu.Unlock()
	s.registry.Emit(ctx, hooks.Event{Type: hooks.EventTaskFailed, Task: t})
}
