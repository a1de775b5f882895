package console

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

// Sink prints flips to stdout with humanized prices. It satisfies
// port.Notifier so the console is just another delivery channel.
type Sink struct{}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Name() string { return "console" }

func (s *Sink) Notify(ctx context.Context, ev model.FlipEvent) error {
	_, err := fmt.Printf("Flip : %s - %s -> %s (margin %s)  %s\n",
		ev.CanonicalName,
		humanize.Comma(ev.Second.Price),
		humanize.Comma(ev.Cheapest.Price),
		humanize.Comma(ev.Margin),
		ev.Reference(),
	)
	return err
}

var _ port.Notifier = (*Sink)(nil)
