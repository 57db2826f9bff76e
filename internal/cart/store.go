package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// PersistState reports whether the last snapshot write reached the store.
type PersistState string

const (
	PersistStateOK     PersistState = "ok"
	PersistStateFailed PersistState = "failed"
)

type mutationMetrics interface {
	IncCartOp(operation string)
	IncCartPersistFailure()
}

// Store holds the ordered cart lines for a single owner. Every mutation is
// applied in memory first and then written through as a full snapshot; the
// write is best-effort and its outcome is reported to the caller instead of
// failing the mutation.
type Store struct {
	mu        sync.Mutex
	owner     string
	items     []Item
	snapshots SnapshotStore
	logg      *logger.Logger
	metrics   mutationMetrics
}

// NewStore builds a store for the owner and rehydrates it from the persisted
// snapshot. A missing or malformed snapshot yields an empty cart, never an error.
func NewStore(ctx context.Context, owner string, snapshots SnapshotStore, logg *logger.Logger, metrics mutationMetrics) (*Store, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("cart owner required")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}

	s := &Store{
		owner:     owner,
		snapshots: snapshots,
		logg:      logg,
		metrics:   metrics,
	}
	s.rehydrate(ctx)
	return s, nil
}

func (s *Store) rehydrate(ctx context.Context) {
	raw, err := s.snapshots.Load(ctx, s.owner)
	if err != nil {
		if err != ErrSnapshotNotFound && s.logg != nil {
			s.logg.Warn(ctx, "cart snapshot load failed, starting empty")
		}
		return
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "cart snapshot malformed, starting empty")
		}
		return
	}
	s.items = items
}

// AddItem appends the product or, when already present, increments its
// quantity by one leaving the stored price untouched.
func (s *Store) AddItem(ctx context.Context, item Item) PersistState {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Cantidad++
			found = true
			break
		}
	}
	if !found {
		item.Cantidad = 1
		s.items = append(s.items, item)
	}

	if s.metrics != nil {
		s.metrics.IncCartOp("add")
	}
	return s.persistLocked(ctx)
}

// RemoveItem deletes the line for the product. Unknown products are a no-op,
// but the snapshot is still rewritten.
func (s *Store) RemoveItem(ctx context.Context, productID int64) PersistState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)

	if s.metrics != nil {
		s.metrics.IncCartOp("remove")
	}
	return s.persistLocked(ctx)
}

// UpdateQuantity sets the line quantity exactly. Quantities below one remove
// the line instead.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, qty int) PersistState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		s.removeLocked(productID)
	} else {
		for i := range s.items {
			if s.items[i].ProductID == productID {
				s.items[i].Cantidad = qty
				break
			}
		}
	}

	if s.metrics != nil {
		s.metrics.IncCartOp("update_quantity")
	}
	return s.persistLocked(ctx)
}

// Clear empties the cart and deletes the snapshot key outright.
func (s *Store) Clear(ctx context.Context) PersistState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	if s.metrics != nil {
		s.metrics.IncCartOp("clear")
	}
	if err := s.snapshots.Delete(ctx, s.owner); err != nil {
		s.reportPersistFailure(ctx, err)
		return PersistStateFailed
	}
	return PersistStateOK
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total recomputes the cart total from the stored lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count returns the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Cantidad
	}
	return count
}

func (s *Store) removeLocked(productID int64) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) persistLocked(ctx context.Context) PersistState {
	payload, err := json.Marshal(s.items)
	if err != nil {
		s.reportPersistFailure(ctx, err)
		return PersistStateFailed
	}
	if err := s.snapshots.Save(ctx, s.owner, payload); err != nil {
		s.reportPersistFailure(ctx, err)
		return PersistStateFailed
	}
	return PersistStateOK
}

func (s *Store) reportPersistFailure(ctx context.Context, err error) {
	if s.metrics != nil {
		s.metrics.IncCartPersistFailure()
	}
	if s.logg != nil {
		s.logg.Error(ctx, "cart snapshot persist failed", err)
	}
}
