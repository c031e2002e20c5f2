package booking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// fakeSource yields a slowly drifting position and counts the reads.
type fakeSource struct {
	reads atomic.Int64
}

func (f *fakeSource) Position(ctx context.Context) (float64, float64, *float64, error) {
	n := float64(f.reads.Add(1))
	return 52.52 + n/10000, 13.40 + n/10000, nil, nil
}

func waitForPoints(t *testing.T, engine *Engine, bookingID uint, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		history, err := engine.Stream().History(context.Background(), bookingID)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(history) >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d points, have %d", want, len(history))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSamplerRecordsWhileRunning(t *testing.T) {
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	sampler := NewSampler(engine.Stream(), 5*time.Millisecond)
	sampler.Start(context.Background(), b.ID, &fakeSource{})
	defer sampler.StopAll()

	waitForPoints(t, engine, b.ID, 3)
}

func TestSamplerStopsOnCancel(t *testing.T) {
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	sampler := NewSampler(engine.Stream(), 5*time.Millisecond)
	sampler.Start(context.Background(), b.ID, &fakeSource{})
	waitForPoints(t, engine, b.ID, 2)

	sampler.Stop(b.ID)
	sampler.StopAll() // waits for the task to drain

	history, _ := engine.Stream().History(context.Background(), b.ID)
	before := len(history)

	// No sample may land after the task stopped.
	time.Sleep(30 * time.Millisecond)
	history, _ = engine.Stream().History(context.Background(), b.ID)
	if len(history) != before {
		t.Errorf("history grew from %d to %d after stop", before, len(history))
	}
}

func TestSamplerExitsWhenStreamCloses(t *testing.T) {
	engine, store, _ := newTestEngine()
	b := seedBooking(store, models.BookingStatusInProgress, models.PaymentStatusEscrowed)

	sampler := NewSampler(engine.Stream(), 5*time.Millisecond)
	sampler.Start(context.Background(), b.ID, &fakeSource{})
	waitForPoints(t, engine, b.ID, 2)

	if _, err := engine.Transition(context.Background(), b.ID, models.BookingStatusCompleted, testWalkerID, ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	// The task sees ErrStreamClosed on its next tick and returns; StopAll
	// must not hang waiting for it.
	done := make(chan struct{})
	go func() {
		sampler.StopAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopAll did not return after stream close")
	}

	history, _ := engine.Stream().History(context.Background(), b.ID)
	before := len(history)
	time.Sleep(30 * time.Millisecond)
	history, _ = engine.Stream().History(context.Background(), b.ID)
	if len(history) != before {
		t.Errorf("history grew from %d to %d after close", before, len(history))
	}
}

func TestSamplerDefaultInterval(t *testing.T) {
	engine, _, _ := newTestEngine()
	sampler := NewSampler(engine.Stream(), 0)
	if sampler.interval != 10*time.Second {
		t.Errorf("interval = %v, want 10s", sampler.interval)
	}
}
