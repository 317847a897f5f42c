package events

import (
	"sync"
	"testing"
)

type testEvent struct {
	n int
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus[testEvent]()
	first, unsubFirst := b.Subscribe()
	second, unsubSecond := b.Subscribe()
	defer unsubFirst()
	defer unsubSecond()

	b.Publish(testEvent{n: 7})

	for name, ch := range map[string]<-chan testEvent{"first": first, "second": second} {
		select {
		case got := <-ch:
			if got.n != 7 {
				t.Fatalf("%s subscriber: expected event 7, got %d", name, got.n)
			}
		default:
			t.Fatalf("%s subscriber received no event", name)
		}
	}
}

func TestBusPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBus[testEvent]()
	ch, unsub := b.Subscribe()
	defer unsub()

	// Overfill the subscriber buffer; the extra publishes must drop, not block.
	for i := 0; i < defaultBufferSize+10; i++ {
		b.Publish(testEvent{n: i})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != defaultBufferSize {
		t.Fatalf("expected %d buffered events, got %d", defaultBufferSize, received)
	}
}

func TestBusUnsubscribeStopsDeliveryAndClosesChannel(t *testing.T) {
	b := NewBus[testEvent]()
	ch, unsub := b.Subscribe()

	b.Publish(testEvent{n: 1})
	unsub()
	b.Publish(testEvent{n: 2})

	if got := <-ch; got.n != 1 {
		t.Fatalf("expected buffered event 1, got %d", got.n)
	}
	if _, open := <-ch; open {
		t.Fatalf("expected channel closed after unsubscribe")
	}

	// Unsubscribing twice must not panic or close twice.
	unsub()
}

func TestBusPublishConcurrentWithUnsubscribe(t *testing.T) {
	b := NewBus[testEvent]()

	const (
		publishers = 8
		churners   = 8
		rounds     = 500
	)

	var wg sync.WaitGroup
	start := make(chan struct{})

	// Publishers hammer the bus while churners subscribe and unsubscribe.
	// A send racing a channel close would panic the publisher goroutine.
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for n := 0; n < rounds; n++ {
				b.Publish(testEvent{n: n})
			}
		}()
	}
	for i := 0; i < churners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for n := 0; n < rounds; n++ {
				ch, unsub := b.Subscribe()
				select {
				case <-ch:
				default:
				}
				unsub()
			}
		}()
	}

	close(start)
	wg.Wait()
}

func TestBusSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	b := NewBus[testEvent]()
	b.Close()

	ch, unsub := b.Subscribe()
	if _, open := <-ch; open {
		t.Fatalf("expected closed channel when subscribing to a closed bus")
	}
	// The no-op unsubscribe must be safe to call.
	unsub()
}

func TestBusCloseMakesPublishNoOp(t *testing.T) {
	b := NewBus[testEvent]()
	ch, _ := b.Subscribe()

	b.Close()
	b.Publish(testEvent{n: 1})

	if _, open := <-ch; open {
		t.Fatalf("expected subscriber channel closed after bus close")
	}
}
