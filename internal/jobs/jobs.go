// Package jobs runs the periodic background work of the server: refreshing
// report gauges and enforcing entry retention.
package jobs

import (
	"context"
)

// Job is a unit of periodic background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}
