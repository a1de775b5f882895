package flipper

import (
	"time"

	"binflip/internal/application/port"
	"binflip/internal/application/service"
	domainservice "binflip/internal/domain/service"
)

// ServiceDeps carries everything the poll loop needs. Wired by svc.
type ServiceDeps struct {
	Source   port.PageSource
	Ingestor *service.Ingestor
	Detector *domainservice.Detector

	Notifiers []port.Notifier
	Repo      port.Repository // nil when every journal backend is disabled
	Clipboard port.Clipboard  // nil when disabled

	// RefreshInterval is the source's (roughly fixed) regeneration cadence,
	// used to sleep out the remainder of an unchanged generation.
	RefreshInterval time.Duration
	// ProbeRetryWait is the fixed pause after a failed freshness probe.
	ProbeRetryWait time.Duration
}
