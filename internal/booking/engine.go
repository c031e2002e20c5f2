package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pawalk/pawalk-backend/internal/models"
	"github.com/pawalk/pawalk-backend/pkg/utils"
)

// Engine owns the booking lifecycle: creation, status transitions and the
// proof-gated settlement that releases escrowed funds. All mutations of one
// booking serialize on a per-booking lock so a transition's read-validate-write
// plus the settlement write commit as one logical operation.
type Engine struct {
	store          Store
	rates          RateSource
	notifier       Notifier
	events         EventPublisher
	stream         *LocationStream
	commissionRate float64

	retryAttempts int
	retryBackoff  time.Duration

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// Option tunes an Engine at construction.
type Option func(*Engine)

// WithNotifier sets the push-notification collaborator.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithEventPublisher sets the domain event fan-out.
func WithEventPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.events = p }
}

// WithCommissionRate overrides the default platform commission.
func WithCommissionRate(rate float64) Option {
	return func(e *Engine) { e.commissionRate = rate }
}

// WithRetry configures the bounded retry for transient persistence failures.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(e *Engine) {
		e.retryAttempts = attempts
		e.retryBackoff = backoff
	}
}

// NewEngine builds an Engine over the given store and rate source.
func NewEngine(store Store, rates RateSource, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		rates:          rates,
		notifier:       NopNotifier{},
		events:         NopPublisher{},
		commissionRate: utils.DefaultCommissionRate,
		retryAttempts:  3,
		retryBackoff:   50 * time.Millisecond,
		locks:          map[uint]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stream = newLocationStream(store, e.events)
	return e
}

// Stream returns the location ingestion stream bound to this engine.
func (e *Engine) Stream() *LocationStream {
	return e.stream
}

// CommissionRate returns the configured platform commission rate.
func (e *Engine) CommissionRate() float64 {
	return e.commissionRate
}

func (e *Engine) lockBooking(id uint) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// withRetry runs fn up to the configured attempt count, backing off between
// attempts. Typed domain errors abort immediately; only transient persistence
// failures are retried (the operation re-reads current status each attempt,
// so a retry is safe).
func (e *Engine) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < e.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * e.retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = fn()
		if err == nil || domainError(err) {
			return err
		}
		log.Printf("booking: transient failure (attempt %d/%d): %v", attempt+1, e.retryAttempts, err)
	}
	return err
}

// AdditionalService is an optional add-on priced on top of the base service.
type AdditionalService struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CreateParams carries everything needed to create a booking.
type CreateParams struct {
	OwnerID            uint
	WalkerID           uint
	PetID              uint
	StartTime          time.Time
	EndTime            time.Time
	ServiceType        models.ServiceType
	BasePrice          float64 // flat-fee services only; ignored for hourly
	AdditionalServices []AdditionalService
	Notes              string
}

// Create builds a PENDING booking. Hourly services price from the walker's
// current rate and the schedule duration; flat services use the explicit base
// price. The walker is notified that a request is waiting.
func (e *Engine) Create(ctx context.Context, p CreateParams) (*models.Booking, error) {
	if !p.EndTime.After(p.StartTime) {
		return nil, fmt.Errorf("end time must be after start time")
	}
	duration := int(p.EndTime.Sub(p.StartTime).Minutes())

	var basePrice float64
	switch p.ServiceType {
	case models.ServiceTypeFlat:
		basePrice = utils.Round2(p.BasePrice)
	default:
		p.ServiceType = models.ServiceTypeHourly
		rate, err := e.rates.HourlyRate(ctx, p.WalkerID)
		if err != nil {
			return nil, fmt.Errorf("look up walker rate: %w", err)
		}
		basePrice = utils.HourlyPrice(rate, duration)
	}
	if basePrice < 0 {
		return nil, ErrInvalidAmount
	}

	var additionalPrice float64
	var tags []string
	for _, svc := range p.AdditionalServices {
		if svc.Price < 0 {
			return nil, ErrInvalidAmount
		}
		additionalPrice += svc.Price
		tags = append(tags, svc.Name)
	}
	additionalPrice = utils.Round2(additionalPrice)

	b := &models.Booking{
		BookingNumber:      newBookingNumber(),
		OwnerID:            p.OwnerID,
		WalkerID:           p.WalkerID,
		PetID:              p.PetID,
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		DurationMinutes:    duration,
		ServiceType:        p.ServiceType,
		BasePrice:          basePrice,
		AdditionalPrice:    additionalPrice,
		TotalPrice:         utils.Round2(basePrice + additionalPrice),
		AdditionalServices: strings.Join(tags, ","),
		Notes:              p.Notes,
		Status:             models.BookingStatusPending,
		PaymentStatus:      models.PaymentStatusPending,
	}

	if err := e.withRetry(ctx, func() error {
		return e.store.CreateBooking(ctx, b)
	}); err != nil {
		return nil, err
	}

	e.publish(ctx, Event{
		Type: EventBookingCreated, BookingID: b.ID, OwnerID: b.OwnerID, WalkerID: b.WalkerID,
		Data: map[string]any{"bookingNumber": b.BookingNumber, "totalPrice": b.TotalPrice},
	})
	e.notify(ctx, b.WalkerID, string(EventBookingCreated), "New booking request",
		fmt.Sprintf("Booking %s is waiting for your confirmation", b.BookingNumber),
		bookingLink(b.ID))
	return b, nil
}

// Transition moves a booking along one edge of the lifecycle graph, applying
// the payment side effects of the edge. actorID must be the owner or the
// walker. Rejected edges return *InvalidTransitionError.
func (e *Engine) Transition(ctx context.Context, bookingID uint, requested models.BookingStatus, actorID uint, reason string) (*models.Booking, error) {
	unlock := e.lockBooking(bookingID)
	defer unlock()

	var (
		booking  *models.Booking
		released *models.EarningRecord
	)
	err := e.withRetry(ctx, func() error {
		released = nil
		return e.store.Transaction(ctx, func(tx Store) error {
			b, err := tx.GetBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			if !b.IsParty(actorID) {
				return ErrForbidden
			}
			if !b.Status.CanTransitionTo(requested) {
				return &InvalidTransitionError{From: b.Status, To: requested}
			}

			b.Status = requested

			switch requested {
			case models.BookingStatusConfirmed:
				// The walker accepting is the capture point: funds move
				// into escrow when the booking is confirmed.
				if b.PaymentStatus == models.PaymentStatusPending {
					b.PaymentStatus = models.PaymentStatusEscrowed
				}
			case models.BookingStatusCancelled:
				b.CancelReason = reason
				if b.PaymentStatus == models.PaymentStatusEscrowed {
					b.PaymentStatus = models.PaymentStatusRefunded
				}
			case models.BookingStatusCompleted:
				rec, err := e.settle(ctx, tx, b)
				if err != nil {
					return err
				}
				released = rec
			}

			return tx.SaveBooking(ctx, b)
		})
	})
	if err != nil {
		return nil, err
	}

	booking, err = e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// The stream tracks IN_PROGRESS: open on entry, close on exit. Close
	// happens under the booking lock, so a record racing this transition
	// is either fully before it or rejected.
	switch booking.Status {
	case models.BookingStatusInProgress:
		if err := e.stream.Open(ctx, booking.ID); err != nil {
			log.Printf("booking %d: open location stream: %v", booking.ID, err)
		}
	case models.BookingStatusCompleted, models.BookingStatusCancelled:
		e.stream.Close(booking.ID)
	}

	e.publish(ctx, Event{
		Type: EventBookingTransitioned, BookingID: booking.ID,
		OwnerID: booking.OwnerID, WalkerID: booking.WalkerID,
		Data: map[string]any{
			"status":        booking.Status,
			"paymentStatus": booking.PaymentStatus,
			"reason":        reason,
		},
	})
	e.notifyTransition(ctx, booking, actorID, reason)

	if released != nil {
		e.announceRelease(ctx, booking, released)
	}
	return booking, nil
}

// Cancel is a convenience wrapper for a transition to CANCELLED.
func (e *Engine) Cancel(ctx context.Context, bookingID uint, actorID uint, reason string) (*models.Booking, error) {
	return e.Transition(ctx, bookingID, models.BookingStatusCancelled, actorID, reason)
}

// settle evaluates the proof gate for a booking entering (or already in)
// COMPLETED. With a valid proof the escrow is released and the earning record
// written; without one the booking is flagged awaiting_proof for support.
// Returns the released record, or nil when the gate is not yet satisfied.
func (e *Engine) settle(ctx context.Context, tx Store, b *models.Booking) (*models.EarningRecord, error) {
	if b.PaymentStatus != models.PaymentStatusEscrowed {
		return nil, nil
	}
	ok, err := proofSatisfied(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		b.AwaitingProof = true
		return nil, nil
	}

	// Duplicate guard: repeated proof submissions must not create a second
	// record. The unique index on booking_id backs this check up.
	if existing, err := tx.EarningForBooking(ctx, b.ID); err == nil && existing != nil {
		return nil, nil
	}

	record := &models.EarningRecord{
		BookingID:        b.ID,
		WalkerID:         b.WalkerID,
		Amount:           utils.WalkerAmount(b.TotalPrice, e.commissionRate),
		CommissionAmount: utils.Commission(b.TotalPrice, e.commissionRate),
		Status:           models.EarningStatusPending,
	}
	if err := tx.CreateEarning(ctx, record); err != nil {
		return nil, err
	}
	record.Status = models.EarningStatusReleased
	if err := tx.SaveEarning(ctx, record); err != nil {
		return nil, err
	}

	b.PaymentStatus = models.PaymentStatusReleased
	b.AwaitingProof = false
	return record, nil
}

func (e *Engine) announceRelease(ctx context.Context, b *models.Booking, record *models.EarningRecord) {
	e.publish(ctx, Event{
		Type: EventPaymentReleased, BookingID: b.ID, OwnerID: b.OwnerID, WalkerID: b.WalkerID,
		Data: map[string]any{
			"amount":           record.Amount,
			"commissionAmount": record.CommissionAmount,
			"totalPrice":       b.TotalPrice,
		},
	})
	e.notify(ctx, b.WalkerID, string(EventPaymentReleased), "Payment released",
		fmt.Sprintf("%.2f has been released for booking %s", record.Amount, b.BookingNumber),
		bookingLink(b.ID))
	e.notify(ctx, b.OwnerID, string(EventPaymentReleased), "Walk completed",
		fmt.Sprintf("Payment for booking %s has been released to your walker", b.BookingNumber),
		bookingLink(b.ID))
}

func (e *Engine) notifyTransition(ctx context.Context, b *models.Booking, actorID uint, reason string) {
	// Tell the other party what happened.
	target := b.OwnerID
	if actorID == b.OwnerID {
		target = b.WalkerID
	}
	title := fmt.Sprintf("Booking %s", strings.ToLower(string(b.Status)))
	description := fmt.Sprintf("Booking %s is now %s", b.BookingNumber, b.Status)
	if reason != "" {
		description += ": " + reason
	}
	e.notify(ctx, target, string(EventBookingTransitioned), title, description, bookingLink(b.ID))
}

// publish and notify are fire-and-forget: a slow or failing collaborator
// must never block or roll back the state change that triggered it.
func (e *Engine) publish(ctx context.Context, event Event) {
	event.OccurredAt = time.Now()
	e.events.Publish(ctx, event)
}

func (e *Engine) notify(ctx context.Context, userID uint, eventType, title, description, link string) {
	go e.notifier.Notify(context.WithoutCancel(ctx), userID, eventType, title, description, link)
}

func newBookingNumber() string {
	return "PW-" + strings.ToUpper(uuid.NewString()[:8])
}

func bookingLink(id uint) string {
	return fmt.Sprintf("/bookings/%d", id)
}
