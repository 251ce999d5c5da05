// README: Fleet service: bootstrap from the repository, reseed, persist.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Repository interface {
	Load(ctx context.Context) ([]Vehicle, error)
	Save(ctx context.Context, vehicles []Vehicle) error
}

type Service struct {
	index    *Index
	repo     Repository
	defaults []Vehicle
	coverage []CoverageRule
	logger   *slog.Logger

	// seedMu serializes Load/Reseed so two workflows reseeding at once do
	// not race on the same fallback vehicle.
	seedMu sync.Mutex
}

type Option func(*Service)

func WithDefaults(v []Vehicle) Option { return func(s *Service) { s.defaults = v } }

func WithCoverage(r []CoverageRule) Option { return func(s *Service) { s.coverage = r } }

func NewService(index *Index, repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		index:    index,
		repo:     repo,
		defaults: DefaultFleet,
		coverage: DefaultCoverage,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Index() *Index { return s.index }

// Load fills the index from the repository. An empty repository is seeded
// with the default fleet; coverage rules are applied either way and the
// result is saved back.
func (s *Service) Load(ctx context.Context) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	stored, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load fleet: %w", err)
	}
	for i, v := range stored {
		if err := s.index.restore(v); err != nil {
			s.logger.Warn("skipping stored vehicle", "row", i, "vehicle_id", v.ID, "err", err)
		}
	}
	added := s.seedLocked()
	s.logger.Info("fleet loaded", "stored", len(stored), "seeded", added, "total", s.index.Len())
	return s.persist(ctx)
}

// Reseed re-applies the bootstrap rules against the live index and returns
// how many vehicles were added. It never duplicates a registered id.
func (s *Service) Reseed(ctx context.Context) (int, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	added := s.seedLocked()
	if added == 0 {
		return 0, nil
	}
	s.logger.Info("fleet reseeded", "added", added)
	return added, s.persist(ctx)
}

func (s *Service) seedLocked() int {
	added := 0
	if s.index.Len() == 0 {
		for _, v := range s.defaults {
			if err := s.index.Register(v); err == nil {
				added++
			}
		}
	}
	for _, rule := range s.coverage {
		if rule.satisfiedBy(s.index.Enumerate(rule.Class, true)) {
			continue
		}
		err := s.index.Register(rule.Fallback)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrDuplicateVehicle):
			s.logger.Debug("coverage fallback already registered", "class", rule.Class, "vehicle_id", rule.Fallback.ID)
		default:
			s.logger.Warn("coverage fallback rejected", "class", rule.Class, "err", err)
		}
	}
	return added
}

// Register adds a new driver and persists the fleet.
func (s *Service) Register(ctx context.Context, v Vehicle) error {
	if err := s.index.Register(v); err != nil {
		return err
	}
	return s.persist(ctx)
}

func (s *Service) Persist(ctx context.Context) error {
	return s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.index.Snapshot()); err != nil {
		return fmt.Errorf("save fleet: %w", err)
	}
	return nil
}

// RunSnapshotFlusher saves the index every interval until ctx ends, with a
// final save on the way out.
func (s *Service) RunSnapshotFlusher(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if err := s.persist(flushCtx); err != nil {
				s.logger.Error("final fleet flush", "err", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := s.persist(ctx); err != nil {
				s.logger.Error("fleet flush", "err", err)
			}
		}
	}
}
