package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	. "advisorapi/internal/models"
)

// advisorMemoryRepository keeps advisors in a map and enforces the same id and
// sin uniqueness as the SQL schema. Records are copied in and out.
type advisorMemoryRepository struct {
	mu       sync.RWMutex
	advisors map[int]Advisor
}

func NewAdvisorMemory(seed ...Advisor) AdvisorRepository {
	r := &advisorMemoryRepository{advisors: make(map[int]Advisor, len(seed))}
	for _, advisor := range seed {
		r.advisors[advisor.ID] = advisor
	}
	return r
}

func (r *advisorMemoryRepository) FindByID(_ context.Context, id int) (*Advisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	advisor, ok := r.advisors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &advisor, nil
}

func (r *advisorMemoryRepository) ListAll(_ context.Context) ([]*Advisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	advisors := make([]*Advisor, 0, len(r.advisors))
	for _, advisor := range r.advisors {
		advisor := advisor
		advisors = append(advisors, &advisor)
	}
	sort.Slice(advisors, func(i, j int) bool { return advisors[i].ID < advisors[j].ID })

	return advisors, nil
}

func (r *advisorMemoryRepository) Insert(_ context.Context, advisor *Advisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.advisors[advisor.ID]; ok {
		return fmt.Errorf("duplicate id %d: %w", advisor.ID, ErrConflict)
	}
	if sinExists(r.advisors, advisor.SIN) {
		return fmt.Errorf("duplicate sin: %w", ErrConflict)
	}

	r.advisors[advisor.ID] = *advisor
	return nil
}

func (r *advisorMemoryRepository) Replace(_ context.Context, id int, advisor *Advisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.advisors[id]
	if !ok {
		return ErrNotFound
	}
	if r.sinTakenLocked(advisor.SIN, id) {
		return fmt.Errorf("duplicate sin: %w", ErrConflict)
	}

	current.Name = advisor.Name
	current.SIN = advisor.SIN
	current.Address = advisor.Address
	current.Phone = advisor.Phone
	if advisor.HealthStatus.IsValid() {
		current.HealthStatus = advisor.HealthStatus
	}
	r.advisors[id] = current

	return nil
}

func (r *advisorMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.advisors[id]; !ok {
		return ErrNotFound
	}
	delete(r.advisors, id)
	return nil
}

func (r *advisorMemoryRepository) ExistsByField(_ context.Context, field string, value any) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch field {
	case FieldID:
		id, ok := value.(int)
		if !ok {
			return false, fmt.Errorf("id lookup needs an int, got %T", value)
		}
		_, exists := r.advisors[id]
		return exists, nil
	case FieldSIN:
		sin, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("sin lookup needs a string, got %T", value)
		}
		return sinExists(r.advisors, sin), nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// sinTakenLocked reports whether a record other than exceptID holds sin.
func (r *advisorMemoryRepository) sinTakenLocked(sin string, exceptID int) bool {
	for id, advisor := range r.advisors {
		if id != exceptID && advisor.SIN == sin {
			return true
		}
	}
	return false
}

func sinExists(advisors map[int]Advisor, sin string) bool {
	for _, advisor := range advisors {
		if advisor.SIN == sin {
			return true
		}
	}
	return false
}
