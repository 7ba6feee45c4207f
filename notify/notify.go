// Package notify tells buyers about order transitions. Delivery is best
// effort: a failed notification never undoes the transition behind it.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-orders/model"
)

type Kind string

const (
	KindConfirmed Kind = "confirmed"
	KindRefunded  Kind = "refunded"
)

type Notifier interface {
	Notify(ctx context.Context, order model.Order, kind Kind) error
}

// Subject is the buyer-facing headline for kind.
func Subject(kind Kind) string {
	switch kind {
	case KindConfirmed:
		return "Your Order Has Been Confirmed!"
	case KindRefunded:
		return "Your Order Has Been Refunded!"
	}
	return "Your Order Has Been Updated"
}

// LogNotifier writes notifications to the log. Used when no broker is
// configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, order model.Order, kind Kind) error {
	n.Logger.Info("order notification",
		"kind", kind,
		"order_id", order.ID,
		"to", order.BuyerEmail,
		"subject", Subject(kind),
		"product", order.ProductName,
		"quantity", order.Quantity,
		"total", order.TotalPrice.StringFixed(2),
	)
	return nil
}

// Dispatcher runs notifications in the background with a timeout and only
// logs their failures.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{notifier: n, timeout: timeout, logger: logger}
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(order model.Order, kind Kind) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, order, kind); err != nil {
			d.logger.Error("notification failed",
				"kind", kind,
				"order_id", order.ID,
				"error", err,
			)
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }
