package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pawalk/pawalk-backend/internal/models"
)

func TestStreamRecordsInArrivalOrder(t *testing.T) {
	engine, store, rec := newTestEngine()
	b := seedBooking(store, models.BookingStatusConfirmed, models.PaymentStatusEscrowed)

	if _, err := engine.Transition(context.Background(), b.ID, models.BookingStatusInProgress, testWalkerID, ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	samples := []RecordInput{
		{Lat: 52.5200, Lng: 13.4050},
		{Lat: 52.5201, Lng: 13.4052},
		{Lat: 52.5203, Lng: 13.4055},
		{Lat: 52.5206, Lng: 13.4059},
		{Lat: 52.5210, Lng: 13.4064},
	}
	for i, in := range samples {
		if _, err := engine.Stream().Record(context.Background(), b.ID, in); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	history, err := engine.Stream().History(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(samples) {
		t.Fatalf("history = %d points, want %d", len(history), len(samples))
	}
	for i, p := range history {
		if p.Latitude != samples[i].Lat || p.Longitude != samples[i].Lng {
			t.Errorf("point %d = (%v, %v), want (%v, %v)", i, p.Latitude, p.Longitude, samples[i].Lat, samples[i].Lng)
		}
	}

	latest, err := engine.Stream().Latest(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Latitude != samples[len(samples)-1].Lat {
		t.Errorf("latest latitude = %v, want %v", latest.Latitude, samples[len(samples)-1].Lat)
	}

	if got := rec.byType(EventLocationRecorded); len(got) != len(samples) {
		t.Errorf("location.recorded events = %d, want %d", len(got), len(samples))
	}

	// The walk ends; a straggler sample must be rejected, not silently kept.
	if _, err := engine.Transition(context.Background(), b.ID, models.BookingStatusCompleted, testWalkerID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := engine.Stream().Record(context.Background(), b.ID, RecordInput{Lat: 52.5215, Lng: 13.4070}); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("record after completion: err = %v, want ErrStreamClosed", err)
	}
	history, _ = engine.Stream().History(context.Background(), b.ID)
	if len(history) != len(samples) {
		t.Errorf("history grew to %d after close", len(history))
	}
}

func TestStreamClosedBeforeWalkStarts(t *testing.T) {
	engine, store, _ := newTestEngine()

	for _, status := range []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
	} {
		b := seedBooking(store, status, models.PaymentStatusPending)
		_, err := engine.Stream().Record(context.Background(), b.ID, RecordInput{Lat: 1, Lng: 1})
		if !errors.Is(err, ErrStreamClosed) {
			t.Errorf("%s: err = %v, want ErrStreamClosed", status, err)
		}
	}
}

func TestStreamClosedAfterCancellation(t *testing.T) {
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusConfirmed, models.PaymentStatusEscrowed)

	if _, err := engine.Transition(context.Background(), b.ID, models.BookingStatusInProgress, testWalkerID, ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if _, err := engine.Stream().Record(context.Background(), b.ID, RecordInput{Lat: 1, Lng: 1}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := engine.Cancel(context.Background(), b.ID, testOwnerID, "emergency"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := engine.Stream().Record(context.Background(), b.ID, RecordInput{Lat: 2, Lng: 2}); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("record after cancel: err = %v, want ErrStreamClosed", err)
	}
}

func TestStreamReopensFromBookingRow(t *testing.T) {
	// After a restart the in-memory stream state is gone but the booking row
	// still says IN_PROGRESS; recording must work without an explicit Open.
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	if _, err := engine.Stream().Record(context.Background(), b.ID, RecordInput{Lat: 48.8566, Lng: 2.3522}); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestStreamRejectsInvalidCoordinates(t *testing.T) {
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	for _, in := range []RecordInput{
		{Lat: 91, Lng: 0},
		{Lat: -91, Lng: 0},
		{Lat: 0, Lng: 181},
		{Lat: 0, Lng: -181},
	} {
		if _, err := engine.Stream().Record(context.Background(), b.ID, in); err == nil {
			t.Errorf("coordinates (%v, %v) accepted", in.Lat, in.Lng)
		}
	}
}

func TestStreamsAreIndependentAcrossBookings(t *testing.T) {
	engine, store, _ := newTestEngine()
	active := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)
	finished := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	if _, err := engine.Transition(context.Background(), finished.ID, models.BookingStatusCompleted, testWalkerID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Closing one booking's stream must not affect another's, and concurrent
	// writers to separate streams must not contend.
	const perWriter = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*perWriter)
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(offset float64) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := engine.Stream().Record(context.Background(), active.ID, RecordInput{Lat: offset, Lng: float64(i) / 1000})
				errs <- err
			}
		}(float64(w))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("record on active booking: %v", err)
		}
	}

	history, _ := engine.Stream().History(context.Background(), active.ID)
	if len(history) != 2*perWriter {
		t.Errorf("active history = %d points, want %d", len(history), 2*perWriter)
	}
	if _, err := engine.Stream().Record(context.Background(), finished.ID, RecordInput{Lat: 1, Lng: 1}); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("finished booking accepted a record: %v", err)
	}
}

func TestStreamDistance(t *testing.T) {
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	// Two points roughly 111km apart along a meridian.
	for _, in := range []RecordInput{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 0},
	} {
		if _, err := engine.Stream().Record(context.Background(), b.ID, in); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	km, err := engine.Stream().Distance(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if km < 110 || km > 112 {
		t.Errorf("distance = %v km, want ~111", km)
	}
}
