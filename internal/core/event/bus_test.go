package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsReadableNextRound(t *testing.T) {
	b := NewBus()
	var got []ShipSunk
	Subscribe(b, func(e ShipSunk) { got = append(got, e) })

	Emit(b, ShipSunk{Round: 1, Side: Defenders, Ship: "Kirov"})
	b.DispatchAll()
	assert.Empty(t, got, "not visible before swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []ShipSunk{{Round: 1, Side: Defenders, Ship: "Kirov"}}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1, "buffer cleared after swap")
}

func TestDispatchFirstEmitOrder(t *testing.T) {
	b := NewBus()
	var log []string
	Subscribe(b, func(e RoundResolved) { log = append(log, "round") })
	Subscribe(b, func(e PlaneDowned) { log = append(log, "plane:"+e.Plane) })

	Emit(b, PlaneDowned{Plane: "a"})
	Emit(b, RoundResolved{Round: 1})
	Emit(b, PlaneDowned{Plane: "b"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []string{"plane:a", "plane:b", "round"}, log)
}

func TestEmitConcurrent(t *testing.T) {
	b := NewBus()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Emit(b, PlaneDowned{Round: i})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, b.Pending())

	n := 0
	Subscribe(b, func(PlaneDowned) { n++ })
	b.SwapBuffers()
	assert.Equal(t, 0, b.Pending())
	b.DispatchAll()
	assert.Equal(t, 50, n)
}

func TestHandlerEmitDefersToNextRound(t *testing.T) {
	b := NewBus()
	var sunk []string
	Subscribe(b, func(e PlaneDowned) { Emit(b, ShipSunk{Ship: e.Carrier}) })
	Subscribe(b, func(e ShipSunk) { sunk = append(sunk, e.Ship) })

	Emit(b, PlaneDowned{Carrier: "Akagi"})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, sunk)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"Akagi"}, sunk)
}
