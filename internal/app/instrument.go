package app

import "context"

// Step names reported to the Instrument.
const (
	StepTotal            = "total"
	StepLoadRecords      = "loadRecords"
	StepLoadAttributes   = "loadAttributes"
	StepLoadReviews      = "loadReviews"
	StepFindCheapestRoom = "findCheapestRoom"
)

// Instrument measures pipeline steps. It must not influence results.
type Instrument interface {
	Start(ctx context.Context, step string) (context.Context, func())
}

type nopInstrument struct{}

func (nopInstrument) Start(ctx context.Context, _ string) (context.Context, func()) {
	return ctx, func() {}
}

func timed[T any](ctx context.Context, in Instrument, step string, fn func(context.Context) (T, error)) (T, error) {
	ctx, end := in.Start(ctx, step)
	defer end()
	return fn(ctx)
}
