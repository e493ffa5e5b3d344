package events

import (
	"testing"
	"time"
)

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventRecordStatus)

	bus.Publish(&RecordStatusEvent{
		BaseEvent: BaseEvent{EventType: EventRecordStatus, Time: time.Now()},
		RecordID:  "rec-1",
		FileName:  "w2.pdf",
		Status:    "success",
	})

	select {
	case ev := <-ch:
		statusEv, ok := ev.(*RecordStatusEvent)
		if !ok {
			t.Fatalf("expected *RecordStatusEvent, got %T", ev)
		}
		if statusEv.FileName != "w2.pdf" {
			t.Errorf("FileName = %q, want %q", statusEv.FileName, "w2.pdf")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventDocumentsRefreshed)

	bus.Publish(&SessionStepEvent{
		BaseEvent: BaseEvent{EventType: EventSessionStep, Time: time.Now()},
		Step:      "configuring",
	})

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event delivered: %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()

	bus.Publish(&SessionStepEvent{
		BaseEvent: BaseEvent{EventType: EventSessionStep, Time: time.Now()},
	})
	bus.Publish(&DocumentsRefreshedEvent{
		BaseEvent: BaseEvent{EventType: EventDocumentsRefreshed, Time: time.Now()},
	})

	got := 0
	timeout := time.After(time.Second)
	for got < 2 {
		select {
		case <-ch:
			got++
		case <-timeout:
			t.Fatalf("received %d events, want 2", got)
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	// Subscribe but never drain.
	_ = bus.Subscribe(EventRecordStatus)

	for i := 0; i < 3; i++ {
		bus.Publish(&RecordStatusEvent{
			BaseEvent: BaseEvent{EventType: EventRecordStatus, Time: time.Now()},
		})
	}

	if dropped := bus.DroppedEventCount(); dropped != 2 {
		t.Errorf("DroppedEventCount = %d, want 2", dropped)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventRecordStatus)
	bus.Unsubscribe(EventRecordStatus, ch)

	bus.Publish(&RecordStatusEvent{
		BaseEvent: BaseEvent{EventType: EventRecordStatus, Time: time.Now()},
	})

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event after unsubscribe: %T", ev)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.Subscribe(EventSessionComplete)
	bus.Close()

	// Must not panic.
	bus.Publish(&SessionCompleteEvent{
		BaseEvent: BaseEvent{EventType: EventSessionComplete, Time: time.Now()},
	})

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after bus Close")
	}
}
