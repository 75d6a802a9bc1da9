package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// ErrIncompleteResultSet не все снимки ещё обработаны
var ErrIncompleteResultSet = errors.New("result set is incomplete")

// Aggregator собирает результаты по индексу входного снимка.
// Набор отдаётся только целиком.
type Aggregator struct {
	mu        sync.Mutex
	tolerance entity.ToleranceSpec
	slots     []entity.Outcome
	filled    []bool
	count     int
}

// NewAggregator создаёт агрегатор на n снимков.
func NewAggregator(n int, tolerance entity.ToleranceSpec) *Aggregator {
	return &Aggregator{
		tolerance: tolerance,
		slots:     make([]entity.Outcome, n),
		filled:    make([]bool, n),
	}
}

// Record сохраняет результат снимка с индексом index. Безопасен для конкурентного вызова.
func (a *Aggregator) Record(index int, outcome entity.Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.slots) {
		return fmt.Errorf("record outcome: index %d out of range [0, %d)", index, len(a.slots))
	}
	if a.filled[index] {
		return fmt.Errorf("record outcome: index %d already recorded", index)
	}

	outcome.Index = index
	a.slots[index] = outcome
	a.filled[index] = true
	a.count++
	return nil
}

// Done сообщает, все ли результаты получены.
func (a *Aggregator) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count == len(a.slots)
}

// ResultSet возвращает полный набор результатов в порядке входа.
func (a *Aggregator) ResultSet() (*entity.ResultSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count != len(a.slots) {
		return nil, fmt.Errorf("%w: %d of %d recorded", ErrIncompleteResultSet, a.count, len(a.slots))
	}

	outcomes := make([]entity.Outcome, len(a.slots))
	copy(outcomes, a.slots)
	return &entity.ResultSet{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now(),
		Tolerance: a.tolerance,
		Outcomes:  outcomes,
	}, nil
}
