package flipper

import (
	"context"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// dispatch fans one event out to every outbound channel without holding up
// the detection loop. Deliveries run in their own goroutines; failures are
// logged and never roll back the dedup set or the totals.
func (s *Service) dispatch(ctx context.Context, ev model.FlipEvent) {
	if s.deps.Clipboard != nil {
		if err := s.deps.Clipboard.Copy(ev.Reference()); err != nil {
			log.Warn().Err(err).Msg("clipboard copy failed")
		}
	}

	for _, n := range s.deps.Notifiers {
		go func(n port.Notifier) {
			if err := n.Notify(ctx, ev); err != nil {
				log.Warn().Err(err).
					Str("notifier", n.Name()).
					Str("auction", ev.Cheapest.ID).
					Msg("flip delivery failed")
			}
		}(n)
	}

	if s.deps.Repo != nil {
		go func() {
			if err := s.deps.Repo.InsertFlip(ctx, ev); err != nil {
				log.Warn().Err(err).Str("auction", ev.Cheapest.ID).Msg("flip journal insert failed")
			}
		}()
	}
}
