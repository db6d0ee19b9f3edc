package jobqueue

import (
	"sync"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
	"github.com/bearbeat/bearbeat/internal/pkg/mail"
	"github.com/bearbeat/bearbeat/internal/pkg/marketing"
)

// Dependencies are the external services the job processors call. They are
// wired once at startup before the queue starts.
type Dependencies struct {
	Marketing *marketing.Service
	Mailer    *mail.Mailer
	App       config.App
}

var (
	deps   Dependencies
	depsMu sync.RWMutex
)

// SetDependencies wires the processor dependencies. Must be called before
// Start.
func SetDependencies(d Dependencies) {
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func getDependencies() Dependencies {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}
