package dungeon

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// NewSeed returns a seed for callers that did not ask for one.
func NewSeed() int64 {
	return time.Now().UnixNano()
}

func seededRNG(seed int64) *rand.Rand {
	// #nosec G404 -- layouts must be reproducible from their seed.
	return rand.New(rand.NewPCG(seedWord(seed, "layout"), seedWord(seed, "pick")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
