package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agronegocio/agromercado-backend/pkg/logger"
	redisclient "github.com/agronegocio/agromercado-backend/pkg/redis"
)

// ChangeEvent announces a catalog mutation on the shared channel.
type ChangeEvent struct {
	Action     string    `json:"action"` // created, updated, deleted
	IDProducto int64     `json:"id_producto"`
	At         time.Time `json:"at"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Notifier publishes catalog change events. Publish failures are logged only;
// the mutation that triggered them already succeeded.
type Notifier struct {
	pub     publisher
	channel string
	logg    *logger.Logger
}

// NewNotifier builds a notifier on the given channel.
func NewNotifier(pub publisher, channel string, logg *logger.Logger) (*Notifier, error) {
	if pub == nil {
		return nil, fmt.Errorf("publisher required")
	}
	if channel == "" {
		return nil, fmt.Errorf("channel required")
	}
	return &Notifier{pub: pub, channel: channel, logg: logg}, nil
}

// ProductoChanged announces a mutation of the given product.
func (n *Notifier) ProductoChanged(ctx context.Context, action string, productID int64) {
	payload, err := json.Marshal(ChangeEvent{Action: action, IDProducto: productID, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := n.pub.Publish(ctx, n.channel, payload); err != nil && n.logg != nil {
		n.logg.Warn(ctx, "catalog change publish failed")
	}
}

type refresher interface {
	Refresh(ctx context.Context) Snapshot
}

// Listen subscribes to the change channel and refreshes the view-model on
// every event until ctx is cancelled. Intended to run in its own goroutine.
func Listen(ctx context.Context, client *redisclient.Client, channel string, vm refresher, logg *logger.Logger) error {
	sub, err := client.Subscribe(ctx, channel)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			vm.Refresh(ctx)
			if logg != nil {
				logg.Info(ctx, "catalog refreshed from change event")
			}
		}
	}
}
