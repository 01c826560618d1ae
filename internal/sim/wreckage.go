package sim

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/voidreach/starforge/internal/spatial"
)

// wreckageDecay is how long an uncollected wreckage survives before the
// tick loop removes it (spec.md §5 "Wreckage": "removed after collection
// or after a decay timeout").
const wreckageDecay = 120 * time.Second

var wreckageResourcePool = []string{"IRON", "TITANIUM", "PLASMA_GEL", "CRYSTAL"}

// spawnWreckage drops a transient lootable entity at an NPC's death
// position. Must be called under the tick lock.
func (e *Engine) spawnWreckage(n *NPC) {
	id := "wreck_" + uuid.NewString()
	w := &Wreckage{
		ID:        id,
		X:         n.X,
		Y:         n.Y,
		Credits:   int64(20 + rand.Intn(80)),
		Resources: map[string]int64{},
		DecaysAt:  time.Now().Add(wreckageDecay),
	}
	kinds := 1 + rand.Intn(2)
	for i := 0; i < kinds; i++ {
		res := wreckageResourcePool[rand.Intn(len(wreckageResourcePool))]
		w.Resources[res] += int64(1 + rand.Intn(5))
	}
	if rand.Float64() < 0.03 {
		w.Relics = append(w.Relics, "WORMHOLE_GEM")
	}
	e.wreckages[id] = w
	e.grid.Insert(id, spatial.KindWreckage, spatial.Point{X: w.X, Y: w.Y})
}

func (e *Engine) tickWreckageDecay(now time.Time) {
	for id, w := range e.wreckages {
		if !now.Before(w.DecaysAt) {
			delete(e.wreckages, id)
			e.grid.Remove(id)
		}
	}
}
