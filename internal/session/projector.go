package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	"github.com/agronegocio/agromercado-backend/pkg/enums"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

// Identity is the minimal authenticated principal.
type Identity struct {
	Cedula string
	Correo string
}

// Snapshot is the read-only projection handed to views.
type Snapshot struct {
	State    enums.SessionState
	Identity *Identity
	Usuario  *models.Usuario
	Vendedor *models.Vendedor
}

// IsVendedor reports whether the projected profile carries seller standing.
func (s Snapshot) IsVendedor() bool {
	return s.State == enums.SessionStateSeller && s.Vendedor != nil
}

type identityResolver interface {
	Resolve(ctx context.Context) (*Identity, error)
}

type profileLoader interface {
	GetUsuario(ctx context.Context, cedula string) (*models.Usuario, error)
	GetVendedorByCedula(ctx context.Context, cedula string) (*models.Vendedor, error)
}

type signOuter interface {
	SignOut(ctx context.Context, cedula string) error
}

type cartClearer interface {
	Delete(ctx context.Context, owner string) error
}

// Projector reconciles the authenticated identity with the cached profile and
// seller record. Enrichment failures degrade the projection instead of
// surfacing; only the identity itself is authoritative.
type Projector struct {
	mu        sync.Mutex
	state     enums.SessionState
	identity  *Identity
	usuario   *models.Usuario
	vendedor  *models.Vendedor
	resolver  identityResolver
	profiles  profileLoader
	signOut   signOuter
	cartStore cartClearer
	logg      *logger.Logger
}

// NewProjector builds a projector in the unknown state.
func NewProjector(resolver identityResolver, profiles profileLoader, signOut signOuter, cartStore cartClearer, logg *logger.Logger) (*Projector, error) {
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile loader required")
	}
	if signOut == nil {
		return nil, fmt.Errorf("sign-out collaborator required")
	}
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &Projector{
		state:     enums.SessionStateUnknown,
		resolver:  resolver,
		profiles:  profiles,
		signOut:   signOut,
		cartStore: cartStore,
		logg:      logg,
	}, nil
}

// Bootstrap resolves any pre-existing session and enriches it.
func (p *Projector) Bootstrap(ctx context.Context) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	identity, err := p.resolver.Resolve(ctx)
	if err != nil {
		p.warn(ctx, "session resolve failed, treating as anonymous")
		identity = nil
	}
	p.identity = identity
	p.reconcileLocked(ctx)
	return p.snapshotLocked()
}

// Login installs the identity eagerly and re-runs reconciliation.
func (p *Projector) Login(ctx context.Context, identity Identity) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.identity = &identity
	p.reconcileLocked(ctx)
	return p.snapshotLocked()
}

// Logout signs out externally, then unconditionally drops the identity, the
// seller standing, and the owner's cart so per-identity carts cannot leak.
func (p *Projector) Logout(ctx context.Context) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.identity != nil {
		if err := p.signOut.SignOut(ctx, p.identity.Cedula); err != nil {
			p.warn(ctx, "external sign-out failed")
		}
		if err := p.cartStore.Delete(ctx, p.identity.Cedula); err != nil {
			p.warn(ctx, "cart clear on logout failed")
		}
	}

	p.identity = nil
	p.usuario = nil
	p.vendedor = nil
	p.state = enums.SessionStateAnonymous
	return p.snapshotLocked()
}

// UpdateUser re-fetches the profile and re-derives seller status. Used after
// the seller conversion flow flips es_vendedor.
func (p *Projector) UpdateUser(ctx context.Context) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reconcileLocked(ctx)
	return p.snapshotLocked()
}

// Snapshot returns the current projection.
func (p *Projector) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Projector) reconcileLocked(ctx context.Context) {
	p.usuario = nil
	p.vendedor = nil

	if p.identity == nil {
		p.state = enums.SessionStateAnonymous
		return
	}

	p.state = enums.SessionStateBuyer

	usuario, err := p.profiles.GetUsuario(ctx, p.identity.Cedula)
	if err != nil {
		p.warn(ctx, "profile enrichment failed, degrading to plain buyer")
		return
	}
	p.usuario = usuario

	if usuario == nil || !usuario.EsVendedor {
		return
	}

	vendedor, err := p.profiles.GetVendedorByCedula(ctx, p.identity.Cedula)
	if err != nil {
		p.warn(ctx, "seller enrichment failed, degrading to non-seller")
		return
	}
	p.vendedor = vendedor
	if vendedor != nil {
		p.state = enums.SessionStateSeller
	}
}

func (p *Projector) snapshotLocked() Snapshot {
	return Snapshot{
		State:    p.state,
		Identity: p.identity,
		Usuario:  p.usuario,
		Vendedor: p.vendedor,
	}
}

func (p *Projector) warn(ctx context.Context, msg string) {
	if p.logg != nil {
		p.logg.Warn(ctx, msg)
	}
}
