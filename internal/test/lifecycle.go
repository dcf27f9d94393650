package test

import (
	"go.uber.org/fx"
)

// LifecycleRecorder collects fx hooks so tests can invoke them directly.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append retains the hook without scheduling it.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub signals on Called when a graceful shutdown is requested.
type ShutdownerStub struct {
	Called chan struct{}
}

func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}
