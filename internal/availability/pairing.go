package availability

import (
	"math/rand"
	"time"

	"stolik/internal/models"
)

// Candidate is one (evening, venue) pair the orchestrator may attempt.
type Candidate struct {
	Evening time.Time
	Venue   models.Venue
}

// PairAndShuffle forms the full cross product of evenings and venues and
// applies a uniform permutation, so repeated runs do not systematically favor
// any venue or date. Pass a nil rng for a time-seeded one.
func PairAndShuffle(evenings []time.Time, venues []models.Venue, rng *rand.Rand) []Candidate {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pairs := make([]Candidate, 0, len(evenings)*len(venues))
	for _, evening := range evenings {
		for _, venue := range venues {
			pairs = append(pairs, Candidate{Evening: evening, Venue: venue})
		}
	}

	rng.Shuffle(len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})
	return pairs
}
