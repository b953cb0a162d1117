package ports

import (
	"time"

	"github.com/bnema/memochat/internal/domain"
)

// TurnObserver receives conversation events for metrics.
type TurnObserver interface {
	TurnFinished(outcome string, elapsed time.Duration)
	ToolDispatched(tool string)
	BackendFailed(kind domain.BackendErrorKind)
}

type NopObserver struct{}

func (NopObserver) TurnFinished(string, time.Duration)    {}
func (NopObserver) ToolDispatched(string)                 {}
func (NopObserver) BackendFailed(domain.BackendErrorKind) {}
