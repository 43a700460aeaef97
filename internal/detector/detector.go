package detector

import (
	"context"
	"errors"
	"time"

	"ipmon/internal/notify"
	"ipmon/internal/store"
	"ipmon/internal/types"

	"go.uber.org/zap"
)

// reconcileTimeout bounds the load, save and notify steps that follow a fetch
const reconcileTimeout = 30 * time.Second

// IPFetcher returns the current public IP; ok is false when the lookup failed
type IPFetcher interface {
	Fetch(ctx context.Context) (ip string, ok bool)
}

// Detector compares the fetched public IP against the persisted one
type Detector struct {
	fetcher  IPFetcher
	store    store.Store
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a change detector
func New(fetcher IPFetcher, st store.Store, notifier notify.Notifier, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		fetcher:  fetcher,
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Check fetches the public IP once and reconciles it with the saved value.
// It returns the emitted change, or nil when the fetch failed or nothing changed.
func (d *Detector) Check(ctx context.Context) *types.IPChange {
	current, ok := d.fetcher.Fetch(ctx)
	if !ok {
		return nil
	}

	// A saved IP is always announced, even if the caller's ctx ends mid-cycle.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	saved, err := d.store.Load(ctx)
	if err != nil && !errors.Is(err, types.ErrIPNotFound) {
		d.logger.Warn("Failed to read saved IP, treating as unset", zap.Error(err))
		saved = ""
	}

	var change *types.IPChange
	switch {
	case saved == "":
		change = &types.IPChange{
			Action:    types.IPChangeActionInitial,
			NewIP:     current,
			Timestamp: d.now(),
		}
	case saved != current:
		change = &types.IPChange{
			Action:    types.IPChangeActionChanged,
			OldIP:     saved,
			NewIP:     current,
			Timestamp: d.now(),
		}
	default:
		d.logger.Debug("Public IP unchanged", zap.String("ip", current))
		return nil
	}

	if err := d.store.Save(ctx, current); err != nil {
		d.logger.Warn("Failed to save public IP", zap.String("ip", current), zap.Error(err))
	}

	d.logger.Info("Public IP change detected",
		zap.String("action", string(change.Action)),
		zap.String("old_ip", change.OldIP),
		zap.String("new_ip", change.NewIP))

	if d.notifier != nil {
		if err := d.notifier.NotifyIPChange(ctx, change); err != nil {
			d.logger.Error("Failed to notify IP change", zap.Error(err))
		}
	}

	return change
}
