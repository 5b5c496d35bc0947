package health

import "context"

// DBPinger checks store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an optional dependency such as the prompt provider or the
// photo bucket.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
