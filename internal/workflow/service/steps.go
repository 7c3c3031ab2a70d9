package service

import (
	"context"
	"fmt"
)

// step is one named stage of a workflow operation.
type step struct {
	name    string
	execute func(ctx context.Context) error
}

func newStep(name string, execute func(ctx context.Context) error) step {
	return step{name: name, execute: execute}
}

// runSteps executes steps in order and stops at the first failure. The
// returned error wraps the step's own error unchanged.
func runSteps(ctx context.Context, flow string, steps ...step) error {
	for _, st := range steps {
		if err := st.execute(ctx); err != nil {
			return fmt.Errorf("%s: %s step failed: %w", flow, st.name, err)
		}
	}
	return nil
}
