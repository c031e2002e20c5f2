package booking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// PositionSource yields the current position of the walker's device. The
// sampler polls it on a fixed interval while a booking is in progress.
type PositionSource interface {
	Position(ctx context.Context) (lat, lng float64, accuracy *float64, err error)
}

// Sampler runs one background sampling task per active booking. Each task
// polls its source on the configured interval and records into the location
// stream; it stops cleanly when its context is cancelled or the stream
// closes, and records nothing after either.
type Sampler struct {
	stream   *LocationStream
	interval time.Duration

	mu      sync.Mutex
	cancels map[uint]context.CancelFunc
	wg      sync.WaitGroup
}

// NewSampler builds a sampler over the stream. interval <= 0 falls back to
// the 10s cadence observed in production clients.
func NewSampler(stream *LocationStream, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Sampler{
		stream:   stream,
		interval: interval,
		cancels:  map[uint]context.CancelFunc{},
	}
}

// Start launches the sampling task for a booking. Starting an already-sampled
// booking restarts its task.
func (s *Sampler) Start(ctx context.Context, bookingID uint, source PositionSource) {
	s.mu.Lock()
	if cancel, ok := s.cancels[bookingID]; ok {
		cancel()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	s.cancels[bookingID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(taskCtx, bookingID, source)
	}()
}

// Stop cancels the sampling task for a booking, if any.
func (s *Sampler) Stop(bookingID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[bookingID]; ok {
		cancel()
		delete(s.cancels, bookingID)
	}
}

// StopAll cancels every task and waits for them to drain.
func (s *Sampler) StopAll() {
	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Sampler) run(ctx context.Context, bookingID uint, source PositionSource) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		lat, lng, accuracy, err := source.Position(ctx)
		if err != nil {
			// A missed read is acceptable loss; keep sampling.
			log.Printf("booking %d: position source: %v", bookingID, err)
			continue
		}

		// The cancel check and the record must not interleave: a sample
		// observed before cancellation but not yet recorded is dropped.
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, err = s.stream.Record(ctx, bookingID, RecordInput{Lat: lat, Lng: lng, Accuracy: accuracy})
		if errors.Is(err, ErrStreamClosed) {
			return
		}
		if err != nil {
			// Best-effort: dropped samples are not retried, to avoid
			// backpressure on the live stream.
			log.Printf("booking %d: record sample: %v", bookingID, err)
		}
	}
}
