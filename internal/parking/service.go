// Package parking implements the transactional parking operations on top
// of the local store: occupying and freeing spots, deleting spots with their
// dependent vehicles, and registering vehicles.
package parking

import (
	"time"

	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/storage"
)

// Service runs parking operations as atomic units of work.
type Service struct {
	db     *storage.DB
	logger *zap.Logger
	policy Policy
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for occupancy and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPolicy replaces the referential integrity policy.
func WithPolicy(p Policy) Option {
	return func(s *Service) { s.policy = p }
}

// NewService creates a parking service over db.
func NewService(db *storage.DB, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     db,
		logger: logger,
		policy: DefaultPolicy(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying store.
func (s *Service) DB() *storage.DB {
	return s.db
}
