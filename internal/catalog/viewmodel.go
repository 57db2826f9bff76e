package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

// State is the render state of the catalog projection.
type State string

const (
	StateLoading    State = "loading"
	StateError      State = "error"
	StateReady      State = "ready"
	StateReadyEmpty State = "ready_empty"
)

// Snapshot is what views receive: a state plus, depending on it, the rows or
// an error message.
type Snapshot struct {
	State     State          `json:"state"`
	Message   string         `json:"message,omitempty"`
	Productos []ProductoView `json:"productos"`
}

type listRepository interface {
	ListProductos(ctx context.Context, filters Filters, defaultLimit int) ([]ProductoView, error)
}

type loadMetrics interface {
	ObserveCatalogLoad(filtered bool, duration time.Duration)
}

// ViewModel holds the catalog projection. Load is idempotent; a failed load
// leaves the projection in the error state and the caller retries with the
// same call.
type ViewModel struct {
	mu           sync.Mutex
	snapshot     Snapshot
	repo         listRepository
	logg         *logger.Logger
	metrics      loadMetrics
	defaultLimit int
}

// NewViewModel starts in the loading state with no rows.
func NewViewModel(repo listRepository, defaultLimit int, logg *logger.Logger, metrics loadMetrics) (*ViewModel, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &ViewModel{
		snapshot:     Snapshot{State: StateLoading},
		repo:         repo,
		logg:         logg,
		metrics:      metrics,
		defaultLimit: defaultLimit,
	}, nil
}

// Load fetches the catalog in one shot and replaces the projection.
func (vm *ViewModel) Load(ctx context.Context, filters Filters) Snapshot {
	vm.mu.Lock()
	vm.snapshot = Snapshot{State: StateLoading}
	vm.mu.Unlock()

	start := time.Now()
	rows, err := vm.repo.ListProductos(ctx, filters, vm.defaultLimit)
	if vm.metrics != nil {
		vm.metrics.ObserveCatalogLoad(!filters.IsZero(), time.Since(start))
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if err != nil {
		if vm.logg != nil {
			vm.logg.Error(ctx, "catalog load failed", err)
		}
		vm.snapshot = Snapshot{State: StateError, Message: "no se pudo cargar el catálogo"}
		return vm.snapshot
	}

	if len(rows) == 0 {
		vm.snapshot = Snapshot{State: StateReadyEmpty, Productos: []ProductoView{}}
		return vm.snapshot
	}

	vm.snapshot = Snapshot{State: StateReady, Productos: rows}
	return vm.snapshot
}

// Refresh re-runs an unfiltered load, replacing whatever is shown.
func (vm *ViewModel) Refresh(ctx context.Context) Snapshot {
	return vm.Load(ctx, Filters{})
}

// Snapshot returns the current projection.
func (vm *ViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshot
}
