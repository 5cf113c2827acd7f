package mission

import (
	"math/rand"
	"sync"
	"time"
)

// FallbackBank picks canned in-character replies when the reply upstream
// fails. Selection is uniform over the stage's variants. The random source is
// injectable so tests can pin the pick.
type FallbackBank struct {
	mu         sync.Mutex
	curriculum *Curriculum
	rng        *rand.Rand
}

// NewFallbackBank creates a bank over the curriculum's fallback tables.
// A nil rng gets a time-seeded source.
func NewFallbackBank(c *Curriculum, rng *rand.Rand) *FallbackBank {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FallbackBank{curriculum: c, rng: rng}
}

// Pick returns a uniformly random canned reply for the stage at missionIndex.
// An index outside the curriculum falls back to stage 0's variants.
func (b *FallbackBank) Pick(missionIndex int) string {
	variants := b.variantsFor(missionIndex)
	if len(variants) == 0 {
		return ""
	}

	b.mu.Lock()
	i := b.rng.Intn(len(variants))
	b.mu.Unlock()

	return variants[i]
}

func (b *FallbackBank) variantsFor(missionIndex int) []string {
	if missionIndex < 0 || missionIndex >= b.curriculum.Len() {
		missionIndex = 0
	}
	if b.curriculum.Len() == 0 {
		return nil
	}
	return b.curriculum.Stages[missionIndex].Fallbacks
}
