package dedupe

import (
	"context"
	"errors"
	"log/slog"

	"tonearm/internal/catalog"
	"tonearm/internal/logging"
	"tonearm/internal/media"
	"tonearm/internal/services"
	"tonearm/internal/task"
)

// Action is the resolution applied to a duplicate group.
type Action string

const (
	// ActionAsk defers to the decision callback.
	ActionAsk Action = "ask"
	// ActionReplace removes the colliding entries before apply.
	ActionReplace Action = "replace"
	// ActionSkip abandons the incoming task and keeps the catalog as-is.
	ActionSkip Action = "skip"
	// ActionKeep applies the incoming task alongside the existing
	// entries. The catalog then holds two records for one logical album,
	// which is a caller-chosen outcome rather than an error.
	ActionKeep Action = "keep"
)

// Callback decides the fate of one duplicate group. It is invoked at
// most once per task, with every colliding entry batched together.
type Callback func(ctx context.Context, t *task.Task, group []media.Entry) Action

// Catalog is the slice of the catalog store the resolver needs.
type Catalog interface {
	FindByIdentity(ctx context.Context, identityKey string) ([]media.Entry, error)
	Remove(ctx context.Context, id int64) error
}

// Resolver queries the catalog for identity collisions and applies the
// configured policy.
type Resolver struct {
	catalog       Catalog
	defaultAction Action
	callback      Callback
	logger        *slog.Logger
}

// NewResolver builds a resolver. defaultAction ActionAsk routes every
// non-empty duplicate group through the callback; any other action is
// applied without consulting it.
func NewResolver(cat Catalog, defaultAction Action, callback Callback, logger *slog.Logger) *Resolver {
	if defaultAction == "" {
		defaultAction = ActionAsk
	}
	return &Resolver{
		catalog:       cat,
		defaultAction: defaultAction,
		callback:      callback,
		logger:        logging.NewComponentLogger(logger, "dedupe"),
	}
}

// IdentityFor computes the identity key of the metadata the task will
// apply. It requires a finalized choice.
func IdentityFor(t *task.Task) (string, error) {
	choice, ok := t.Choice()
	if !ok {
		return "", errors.New("identity requires a finalized choice")
	}

	if choice.Kind == task.ChoiceApply {
		c := t.ChosenCandidate()
		switch {
		case c.Album != nil:
			return catalog.AlbumIdentity(c.Album.AlbumArtist, c.Album.Album), nil
		case c.Track != nil:
			return catalog.SingletonIdentity(c.Track.Track.Artist, c.Track.Track.Title), nil
		}
		return "", errors.New("chosen candidate carries no metadata")
	}

	// Keeping tags as-is: identity comes from the observed tracks.
	if len(t.Tracks) == 0 {
		return "", errors.New("task has no tracks")
	}
	first := t.Tracks[0]
	if t.Kind == task.KindAlbum {
		return catalog.AlbumIdentity(first.EffectiveAlbumArtist(), first.Album), nil
	}
	return catalog.SingletonIdentity(first.Artist, first.Title), nil
}

// Resolve queries the catalog once for the task's identity, records the
// duplicate group on the task, and applies the resolution policy. The
// returned action is what the apply stage must honor: ActionSkip means
// the task was already transitioned to skipped here.
func (r *Resolver) Resolve(ctx context.Context, t *task.Task) (Action, error) {
	key, err := IdentityFor(t)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "resolve", "derive identity", t.Describe(), err)
	}

	group, err := r.catalog.FindByIdentity(ctx, key)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "resolve", "query catalog", key, err)
	}
	t.Duplicates = group
	if len(group) == 0 {
		return ActionKeep, nil
	}

	action := r.defaultAction
	if action == ActionAsk {
		if r.callback == nil {
			action = ActionSkip
		} else {
			action = r.callback(ctx, t, group)
		}
	}

	logger := logging.WithContext(services.WithTaskID(ctx, t.ID), r.logger)
	switch action {
	case ActionReplace:
		for _, entry := range group {
			if err := r.catalog.Remove(ctx, entry.ID); err != nil {
				return "", services.Wrap(services.ErrTransient, "resolve", "remove duplicate", key, err)
			}
		}
		logger.Info("replaced duplicate entries",
			logging.String("identity", key),
			logging.Int("removed", len(group)),
		)
		return ActionReplace, nil
	case ActionSkip:
		if err := t.MarkSkipped(); err != nil {
			return "", err
		}
		logger.Info("skipped duplicate import", logging.String("identity", key))
		return ActionSkip, nil
	case ActionKeep:
		logger.Info("keeping both duplicate entries", logging.String("identity", key))
		return ActionKeep, nil
	default:
		return "", services.Wrap(services.ErrValidation, "resolve", "apply policy",
			"unknown duplicate action "+string(action), nil)
	}
}
