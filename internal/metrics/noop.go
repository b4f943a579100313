package metrics

import "context"

// NoOp is a recorder that does nothing.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (*NoOp) TimerStarted(context.Context, string) {}

func (*NoOp) TimerStopped(context.Context, string, int64) {}

func (*NoOp) Login(context.Context, string, bool) {}

func (*NoOp) Close(context.Context) error { return nil }
