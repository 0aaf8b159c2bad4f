package types

// Event kinds passed to MetricsCollector.RecordEvent.
const (
	EventNext      = "next"
	EventError     = "error"
	EventCompleted = "completed"
)

// MetricsCollector defines methods for recording adapter activity.
//
// Implementations must be non-blocking and safe for concurrent use: events
// are recorded from whichever goroutine the underlying source delivers on.
//
// The adapter argument is the name the adapter was configured with (see
// rxbridge.WithName), e.g. "stream", "subject" or a NATS address.
type MetricsCollector interface {
	// RecordSubscription records an accepted subscription.
	RecordSubscription(adapter string)

	// RecordRejected records a subscription refused with a usage error.
	RecordRejected(adapter string)

	// RecordDisposal records a teardown triggered by the subscriber before the
	// sequence terminated.
	RecordDisposal(adapter string)

	// RecordEvent records a notification delivered to an observer.
	//
	// Parameters:
	//   - adapter: Adapter name
	//   - kind: One of EventNext, EventError, EventCompleted
	RecordEvent(adapter string, kind string)
}
