package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pawalk/pawalk-backend/internal/models"
	"github.com/pawalk/pawalk-backend/pkg/utils"
)

// LocationCache mirrors the latest sample of each active booking for cheap
// live-view reads. Best-effort: cache failures are logged by the caller and
// never fail ingestion.
type LocationCache interface {
	SetLatest(ctx context.Context, bookingID uint, point *models.LocationPoint) error
}

// LocationStream accepts position samples for in-progress bookings. Writers
// for different bookings never share a lock; writers for the same booking
// serialize so storage order is arrival order. Closing wins races against
// in-flight records: a sample arriving after Close is rejected, never
// silently accepted.
type LocationStream struct {
	store  Store
	events EventPublisher
	cache  LocationCache

	mu   sync.RWMutex
	open map[uint]*bookingStream
}

type bookingStream struct {
	mu     sync.Mutex
	closed bool
}

func newLocationStream(store Store, events EventPublisher) *LocationStream {
	return &LocationStream{
		store:  store,
		events: events,
		open:   map[uint]*bookingStream{},
	}
}

// SetCache attaches a latest-sample cache.
func (s *LocationStream) SetCache(c LocationCache) {
	s.cache = c
}

// Open marks a booking's stream as accepting samples. Only legal while the
// booking is IN_PROGRESS; calling it again on an open stream is a no-op.
func (s *LocationStream) Open(ctx context.Context, bookingID uint) error {
	s.mu.Lock()
	if bs, ok := s.open[bookingID]; ok && !bs.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != models.BookingStatusInProgress {
		return ErrStreamClosed
	}

	s.mu.Lock()
	s.open[bookingID] = &bookingStream{}
	s.mu.Unlock()
	return nil
}

// Close stops the stream for a booking. Called by the engine when the booking
// leaves IN_PROGRESS; takes the per-booking write lock so any record still in
// flight either landed before the close or fails with ErrStreamClosed.
func (s *LocationStream) Close(bookingID uint) {
	s.mu.Lock()
	bs, ok := s.open[bookingID]
	s.mu.Unlock()
	if !ok {
		return
	}
	bs.mu.Lock()
	bs.closed = true
	bs.mu.Unlock()
}

// RecordInput is one incoming GPS sample.
type RecordInput struct {
	Lat        float64
	Lng        float64
	Accuracy   *float64
	RecordedAt time.Time
}

// Record appends a sample to the booking's stream. Samples are stored as-is:
// no deduplication, no smoothing, recorded_at jitter tolerated. Rejected with
// ErrStreamClosed when the booking is not currently IN_PROGRESS.
func (s *LocationStream) Record(ctx context.Context, bookingID uint, in RecordInput) (*models.LocationPoint, error) {
	if !utils.ValidCoordinates(in.Lat, in.Lng) {
		return nil, fmt.Errorf("invalid coordinates (%.6f, %.6f)", in.Lat, in.Lng)
	}

	bs, err := s.handle(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Per-booking append lock: arrival order is storage order, and the
	// closed check holds until the insert lands.
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.closed {
		return nil, ErrStreamClosed
	}

	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	point := &models.LocationPoint{
		BookingID:  bookingID,
		Latitude:   in.Lat,
		Longitude:  in.Lng,
		Accuracy:   in.Accuracy,
		RecordedAt: recordedAt,
	}
	if err := s.store.CreateLocationPoint(ctx, point); err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Best-effort mirror; a dropped cache write is acceptable.
		_ = s.cache.SetLatest(ctx, bookingID, point)
	}
	s.events.Publish(ctx, Event{
		Type: EventLocationRecorded, BookingID: bookingID, OccurredAt: time.Now(),
		Data: map[string]any{"lat": point.Latitude, "lng": point.Longitude},
	})
	return point, nil
}

// handle resolves the in-memory stream state for a booking, lazily reopening
// it when the booking row says IN_PROGRESS (e.g. after a process restart).
func (s *LocationStream) handle(ctx context.Context, bookingID uint) (*bookingStream, error) {
	s.mu.RLock()
	bs, ok := s.open[bookingID]
	s.mu.RUnlock()
	if ok {
		return bs, nil
	}

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusInProgress {
		return nil, ErrStreamClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.open[bookingID]; ok {
		return existing, nil
	}
	bs = &bookingStream{}
	s.open[bookingID] = bs
	return bs, nil
}

// Latest returns the most recent sample for a booking, or ErrNotFound when
// none has been recorded yet.
func (s *LocationStream) Latest(ctx context.Context, bookingID uint) (*models.LocationPoint, error) {
	return s.store.LatestLocationPoint(ctx, bookingID)
}

// History returns every sample for a booking in insertion order.
func (s *LocationStream) History(ctx context.Context, bookingID uint) ([]models.LocationPoint, error) {
	return s.store.LocationPoints(ctx, bookingID)
}

// Distance sums the haversine distance over a booking's recorded path, in
// kilometers.
func (s *LocationStream) Distance(ctx context.Context, bookingID uint) (float64, error) {
	points, err := s.History(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Latitude, p.Longitude}
	}
	return utils.PathDistance(coords), nil
}
