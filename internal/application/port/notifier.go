package port

import (
	"context"

	"binflip/internal/domain/model"
)

// Notifier delivers one flip event to an outbound channel. Deliveries are
// fire-and-forget: a failure is logged by the caller and never affects
// detection state.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev model.FlipEvent) error
}
