package schedule

import "context"

// Task is a unit of scheduled work. Run may be called repeatedly and must
// return promptly when ctx is cancelled.
type Task interface {
	Run(ctx context.Context) error
	Name() string
}
