package config

const (
	// TopicJobDispatched is the NSQ topic receiving an audit event for every
	// job accepted by an external processor.
	TopicJobDispatched = "jobs.dispatched"

	// TopicJobFailed is the NSQ topic receiving an audit event for every
	// dispatch that the processor rejected or that never reached it.
	TopicJobFailed = "jobs.failed"
)
