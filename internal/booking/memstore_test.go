package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// memStore is an in-memory Store used by the engine tests. Transactions
// snapshot the maps and restore them when fn fails, so a rejected transition
// leaves no partial writes behind, same as the postgres implementation.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID   uint
	bookings map[uint]models.Booking
	proofs   map[uint][]models.ServiceProof
	points   map[uint][]models.LocationPoint
	earnings map[uint]models.EarningRecord
	tips     []models.Tip
	users    map[uint]models.User
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[uint]models.Booking{},
		proofs:   map[uint][]models.ServiceProof{},
		points:   map[uint][]models.LocationPoint{},
		earnings: map[uint]models.EarningRecord{},
		users:    map[uint]models.User{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	snap.nextID = s.nextID
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.proofs {
		snap.proofs[k] = append([]models.ServiceProof(nil), v...)
	}
	for k, v := range s.points {
		snap.points[k] = append([]models.LocationPoint(nil), v...)
	}
	for k, v := range s.earnings {
		snap.earnings[k] = v
	}
	snap.tips = append([]models.Tip(nil), s.tips...)
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.nextID = snap.nextID
	s.bookings = snap.bookings
	s.proofs = snap.proofs
	s.points = snap.points
	s.earnings = snap.earnings
	s.tips = snap.tips
	s.users = snap.users
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *memStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) bookingsWhere(match func(models.Booking) bool) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memStore) BookingsByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	return s.bookingsWhere(func(b models.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (s *memStore) BookingsByWalker(ctx context.Context, walkerID uint) ([]models.Booking, error) {
	return s.bookingsWhere(func(b models.Booking) bool { return b.WalkerID == walkerID }), nil
}

func (s *memStore) CreateProof(ctx context.Context, p *models.ServiceProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.proofs[p.BookingID] = append(s.proofs[p.BookingID], *p)
	return nil
}

func (s *memStore) ProofsForBooking(ctx context.Context, bookingID uint) ([]models.ServiceProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ServiceProof(nil), s.proofs[bookingID]...), nil
}

func (s *memStore) CreateLocationPoint(ctx context.Context, p *models.LocationPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.points[p.BookingID] = append(s.points[p.BookingID], *p)
	return nil
}

func (s *memStore) LocationPoints(ctx context.Context, bookingID uint) ([]models.LocationPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LocationPoint(nil), s.points[bookingID]...), nil
}

func (s *memStore) LatestLocationPoint(ctx context.Context, bookingID uint) (*models.LocationPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := s.points[bookingID]
	if len(pts) == 0 {
		return nil, ErrNotFound
	}
	p := pts[len(pts)-1]
	return &p, nil
}

func (s *memStore) CreateEarning(ctx context.Context, e *models.EarningRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.earnings[e.BookingID]; ok {
		return fmt.Errorf("duplicate earning for booking %d", e.BookingID)
	}
	e.ID = s.id()
	s.earnings[e.BookingID] = *e
	return nil
}

func (s *memStore) EarningForBooking(ctx context.Context, bookingID uint) (*models.EarningRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.earnings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *memStore) SaveEarning(ctx context.Context, e *models.EarningRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.earnings[e.BookingID]; !ok {
		return ErrNotFound
	}
	s.earnings[e.BookingID] = *e
	return nil
}

func (s *memStore) EarningsForWalker(ctx context.Context, walkerID uint, limit, offset int) ([]models.EarningRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.EarningRecord
	for _, e := range s.earnings {
		if e.WalkerID == walkerID {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *memStore) SumEarningsForWalker(ctx context.Context, walkerID uint, status models.EarningStatus) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, e := range s.earnings {
		if e.WalkerID == walkerID && e.Status == status {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (s *memStore) CreateTip(ctx context.Context, t *models.Tip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.tips = append(s.tips, *t)
	return nil
}

func (s *memStore) SumTipsForWalker(ctx context.Context, walkerID uint) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, t := range s.tips {
		if t.WalkerID == walkerID {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (s *memStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// stubRates is a fixed walker-id -> hourly-rate table.
type stubRates map[uint]float64

func (r stubRates) HourlyRate(ctx context.Context, walkerID uint) (float64, error) {
	rate, ok := r[walkerID]
	if !ok {
		return 0, ErrNotFound
	}
	return rate, nil
}

// recorder captures published events for assertions. Publish is called
// synchronously by the engine, so no channel is needed.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(ctx context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) byType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

const (
	testOwnerID  uint = 1
	testWalkerID uint = 2
	testPetID    uint = 3
)

func newTestEngine(opts ...Option) (*Engine, *memStore, *recorder) {
	store := newMemStore()
	rec := &recorder{}
	opts = append([]Option{WithEventPublisher(rec)}, opts...)
	engine := NewEngine(store, stubRates{testWalkerID: 20}, opts...)
	return engine, store, rec
}

// seedBooking inserts a booking directly in the given lifecycle state,
// bypassing Create, so tests can start mid-flight.
func seedBooking(store *memStore, status models.BookingStatus, payment models.PaymentStatus) *models.Booking {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	b := &models.Booking{
		BookingNumber:   "PW-TEST0001",
		OwnerID:         testOwnerID,
		WalkerID:        testWalkerID,
		PetID:           testPetID,
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		DurationMinutes: 60,
		ServiceType:     models.ServiceTypeHourly,
		BasePrice:       20,
		TotalPrice:      20,
		Status:          status,
		PaymentStatus:   payment,
	}
	_ = store.CreateBooking(context.Background(), b)
	return b
}

// submitValidProof posts a minimal passing proof for the booking.
func submitValidProof(e *Engine, bookingID uint) (*models.ServiceProof, error) {
	media := []MediaInput{{URL: "https://cdn.example.com/walk.jpg", Type: models.MediaTypePhoto}}
	return e.SubmitProof(context.Background(), bookingID, testWalkerID, media, "All done, happy pup")
}
