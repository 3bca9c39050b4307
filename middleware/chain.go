package middleware

// DefaultStack returns the recommended production middleware stack.
// This includes panic recovery, operation ID injection, and logging.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		Recover(),
		OperationID(),
		Logging(logger),
	}
}

// GuardedStack returns the default stack followed by size and batch guards.
// Oversized documents are rejected before they are parsed.
func GuardedStack(logger Logger, maxBytes int64, maxBatch int) []Middleware {
	return append(DefaultStack(logger),
		SizeLimit(maxBytes, WithSizeLimitLogger(logger)),
		BatchLimit(maxBatch, WithBatchLimitLogger(logger)),
	)
}
