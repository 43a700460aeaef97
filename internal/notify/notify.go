package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ipmon/internal/notify/template"
	"ipmon/internal/types"

	"go.uber.org/zap"
)

type registered struct {
	notifierType NotifierType
	notifier     Notifier
}

// Manager fans notifications out to every registered notifier in order.
// Delivery is synchronous so the caller observes exactly one send per event.
type Manager struct {
	logger    *zap.Logger
	mu        sync.RWMutex
	notifiers []registered
}

// NewManager creates an empty notifier manager
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Register adds a notifier, replacing any existing one of the same type
func (m *Manager) Register(t NotifierType, n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.notifiers {
		if r.notifierType == t {
			m.notifiers[i].notifier = n
			return
		}
	}
	m.notifiers = append(m.notifiers, registered{notifierType: t, notifier: n})
}

// IsNotifierEnabled checks if a notifier is registered
func (m *Manager) IsNotifierEnabled(t NotifierType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.notifiers {
		if r.notifierType == t {
			return true
		}
	}
	return false
}

// NotifyIPChange sends an IP change notification to all notifiers
func (m *Manager) NotifyIPChange(ctx context.Context, change *types.IPChange) error {
	return m.each(func(n Notifier) error {
		return n.NotifyIPChange(ctx, change)
	})
}

// NotifyOnline sends the startup announcement to all notifiers
func (m *Manager) NotifyOnline(ctx context.Context, status *types.Status) error {
	return m.each(func(n Notifier) error {
		return n.NotifyOnline(ctx, status)
	})
}

func (m *Manager) each(fn func(Notifier) error) error {
	m.mu.RLock()
	notifiers := make([]registered, len(m.notifiers))
	copy(notifiers, m.notifiers)
	m.mu.RUnlock()

	var errs []error
	for _, r := range notifiers {
		if err := fn(r.notifier); err != nil {
			m.logger.Error("Failed to send notification",
				zap.String("type", string(r.notifierType)),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", r.notifierType, err))
		}
	}
	return errors.Join(errs...)
}

// renderChange renders the message for an IP change event
func renderChange(loader *template.Loader, change *types.IPChange) (string, error) {
	name := template.IPChanged
	if change.IsInitial() {
		name = template.IPInitial
	}
	return loader.Render(name, change)
}
