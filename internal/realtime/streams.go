package realtime

// Named realtime streams.
const (
	// StreamInvalidations carries list invalidation events after mutations.
	StreamInvalidations = "invalidations"
)

// EventInvalidate is the event name of invalidation messages.
const EventInvalidate = "invalidate"
