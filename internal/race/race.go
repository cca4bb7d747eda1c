// Package race runs two activities concurrently and keeps whichever finishes first.
package race

import "context"

// Winner identifies which operand of Select finished first.
type Winner int

const (
	First Winner = iota + 1
	Second
)

func (w Winner) String() string {
	switch w {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return "none"
	}
}

// Select starts first and second under a shared child context and returns as
// soon as either of them returns. The other one is cancelled and Select waits
// for it to return, so the loser performs no side effects after Select does.
// The loser's error is discarded.
//
// If ctx is cancelled before either operand finishes, Select returns ctx.Err().
func Select(ctx context.Context, first, second func(context.Context) error) (Winner, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		winner Winner
		err    error
	}
	results := make(chan result, 2)

	go func() { results <- result{First, first(raceCtx)} }()
	go func() { results <- result{Second, second(raceCtx)} }()

	r := <-results
	cancel()
	<-results

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.winner, r.err
}
