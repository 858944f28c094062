package services

import (
	"math/rand/v2"

	. "advisorapi/internal/models"
)

const healthStatusDrawMax = 5

// Randomizer is the random source behind health status assignment.
// *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

type HealthStatusService struct {
	random Randomizer
}

// NewHealthStatusService uses the process-wide source when random is nil.
func NewHealthStatusService(random Randomizer) *HealthStatusService {
	if random == nil {
		random = globalRandom{}
	}
	return &HealthStatusService{random: random}
}

// Draw returns a uniform value in [1, 5].
func (s *HealthStatusService) Draw() int {
	return s.random.IntN(healthStatusDrawMax) + 1
}

func (s *HealthStatusService) Assign() HealthStatus {
	return HealthStatusForDraw(s.Draw())
}

// HealthStatusForDraw maps 1-3 to Green, 4 to Yellow and everything above to Red.
func HealthStatusForDraw(draw int) HealthStatus {
	switch {
	case draw <= 3:
		return HealthStatusGreen
	case draw == 4:
		return HealthStatusYellow
	default:
		return HealthStatusRed
	}
}
