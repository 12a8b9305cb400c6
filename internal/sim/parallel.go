package sim

import (
	"context"
	"sync"
)

// Ensemble runs one simulation per initial state in parallel. Because
// simulators and their wrapped models are not thread-safe, every run gets a
// fresh simulator from the factory.
type Ensemble struct {
	factory func() (*Simulator, error)
}

func NewEnsemble(factory func() (*Simulator, error)) *Ensemble {
	return &Ensemble{factory: factory}
}

// Run launches one run per start state and waits for all of them. The first
// error encountered is returned.
func (e *Ensemble) Run(ctx context.Context, starts []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(starts))
	errs := make([]error, len(starts))

	var wg sync.WaitGroup
	for i := range starts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			s, err := e.factory()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, starts[idx], cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
