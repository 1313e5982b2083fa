package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(ev Event) { got = append(got, "a:"+ev.Type()) })
	unsub := bus.Subscribe(func(ev Event) { got = append(got, "b:"+ev.Type()) })

	bus.Publish(RoomChanged{RoomID: "r1"})
	unsub()
	unsub()
	bus.Publish(PointsScored{Points: 10})

	assert.Equal(t, []string{"a:roomChanged", "b:roomChanged", "a:pointsScored"}, got)
}

func TestBus_HandlersMayPublish(t *testing.T) {
	bus := NewBus()
	var seen []string
	bus.Subscribe(func(ev Event) {
		seen = append(seen, ev.Type())
		if _, ok := ev.(PointsScored); ok {
			bus.Publish(ScoreChanged{Score: 10, Multiplier: 1})
		}
	})
	bus.Publish(PointsScored{Points: 10})
	assert.Equal(t, []string{"pointsScored", "scoreChanged"}, seen)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(RoomEnemiesDefeated{RoomID: "r"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, count)
}
