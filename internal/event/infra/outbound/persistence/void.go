package persistence

import (
	"context"
	"fmt"

	"github.com/davicafu/eventpub/internal/event/domain"
)

// VoidEventPersistence es para aplicaciones que aceptan perder eventos si falla el
// transporte. Invocar Persist es un error de programación.
type VoidEventPersistence struct{}

func NewVoidEventPersistence() *VoidEventPersistence {
	return &VoidEventPersistence{}
}

func (*VoidEventPersistence) SupportsPersistence() bool { return false }

func (*VoidEventPersistence) Persist(_ context.Context, kind domain.EventKind, _ domain.RoutingKey, _ domain.Envelope) error {
	return fmt.Errorf("%w: %w (event type %s)", domain.ErrPersistence, domain.ErrPersistenceNotConfigured, kind)
}

// Verificación estática
var _ domain.EventPersistence = (*VoidEventPersistence)(nil)
