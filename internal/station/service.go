package station

import (
	"context"
	"log/slog"
	"sync"
)

// Service runs acquisitions and hands the results to the store and sinks.
type Service struct {
	acquirer *Acquirer
	store    Store
	sinks    []Sink
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(acquirer *Acquirer, store Store, sinks []Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		acquirer: acquirer,
		store:    store,
		sinks:    sinks,
		logger:   logger,
	}
}

// DefaultURL returns the station URL used when none is given.
func (s *Service) DefaultURL() string {
	return s.acquirer.DefaultURL()
}

// Collect acquires a reading from source (blank means the default URL),
// appends it to the store and publishes it to every sink. Store and sink
// failures are logged; the reading is returned either way.
func (s *Service) Collect(ctx context.Context, source string) Reading {
	reading := s.acquirer.Acquire(ctx, source)

	id, err := s.store.Append(ctx, reading)
	if err != nil {
		s.logger.Error("failed to store reading",
			"error", err,
			"download_time", reading.DownloadTime,
			"available", reading.IsAvailable,
		)
		return reading
	}
	reading.ID = id
	s.logger.Info("reading stored", "id", id, "available", reading.IsAvailable)

	s.publish(ctx, reading)
	return reading
}

func (s *Service) publish(ctx context.Context, reading Reading) {
	var wg sync.WaitGroup
	for _, sink := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sink.Publish(ctx, reading); err != nil {
				s.logger.Warn("sink publish failed", "sink", sink.Name(), "id", reading.ID, "error", err)
			}
		}()
	}
	wg.Wait()
}

// Latest delegates to the underlying store.
func (s *Service) Latest(ctx context.Context) (Reading, error) {
	return s.store.MostRecent(ctx)
}
