package pubsub

import (
	"reflect"
	"testing"
)

func TestBusDeliversInOrderToEverySubscriber(t *testing.T) {
	bus := NewBus[int]()

	var first, second []int
	bus.Subscribe(func(v int) { first = append(first, v) })
	bus.Subscribe(func(v int) { second = append(second, v) })

	for i := 1; i <= 3; i++ {
		bus.Publish(i)
	}

	want := []int{1, 2, 3}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("first subscriber: got %v, want %v", first, want)
	}
	if !reflect.DeepEqual(second, want) {
		t.Errorf("second subscriber: got %v, want %v", second, want)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus[string]()

	var got []string
	unsubscribe := bus.Subscribe(func(v string) { got = append(got, v) })

	bus.Publish("a")
	unsubscribe()
	unsubscribe()
	bus.Publish("b")

	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("got %v, want [a]", got)
	}
	if bus.Len() != 0 {
		t.Errorf("Len: got %d, want 0", bus.Len())
	}
}

func TestBusUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus[int]()

	var calls int
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(int) {
		calls++
		unsubscribe()
	})
	var other int
	bus.Subscribe(func(int) { other++ })

	bus.Publish(1)
	bus.Publish(2)

	if calls != 1 {
		t.Errorf("self-removing subscriber: got %d calls, want 1", calls)
	}
	if other != 2 {
		t.Errorf("other subscriber: got %d calls, want 2", other)
	}
}

func TestBusLateSubscriberMissesEarlierValues(t *testing.T) {
	bus := NewBus[int]()
	bus.Publish(1)

	var got []int
	bus.Subscribe(func(v int) { got = append(got, v) })
	bus.Publish(2)

	if !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("got %v, want [2]", got)
	}
}
