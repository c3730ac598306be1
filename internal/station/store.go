package station

import "context"

// Store is the contract the record stores must satisfy.
type Store interface {
	Append(ctx context.Context, r Reading) (int64, error)
	MostRecent(ctx context.Context) (Reading, error)
}

// Sink receives every persisted reading (MQTT, InfluxDB).
type Sink interface {
	Name() string
	Publish(ctx context.Context, r Reading) error
}
