// Package middleware provides middleware for minirpc codec operations.
//
// Every decode or encode of a Request or Response envelope is an Operation
// passed down a chain of handlers. Each middleware wraps the next handler,
// allowing work before and after the innermost handler parses or writes
// the wire bytes.
//
// # Basic Usage
//
// Create and compose middleware:
//
//	chain := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.OperationID(),
//	    middleware.Logging(logger),
//	)
//	handler := chain(baseHandler)
//
// # Available Middleware
//
//   - Recover: Catches panics and converts them to internal errors
//   - OperationID: Injects a unique operation ID into the context
//   - Logging: Logs operation details and timing
//   - OTel: Records spans and metrics with OpenTelemetry
//   - SizeLimit: Rejects oversized documents before parsing
//   - BatchLimit: Rejects oversized or empty batches
//   - RateLimit: Throttles operations with a token bucket per key
//   - Validate: Checks documents and params against JSON Schemas
//
// # Default Stacks
//
//	// Recover + OperationID + Logging
//	stack := middleware.DefaultStack(logger)
//
//	// DefaultStack + SizeLimit + BatchLimit
//	stack := middleware.GuardedStack(logger, 1*middleware.MB, 100)
//
// # Loggers
//
// Logging accepts any Logger. Adapters are provided for zap and logrus:
//
//	logger := middleware.NewZapLogger(zap.Must(zap.NewProduction()))
//	logger := middleware.NewLogrusLogger(logrus.New())
//
// # Errors
//
// Middleware failures wrap a sentinel such as ErrTooLarge or ErrRateLimited
// together with the protocol.Error a peer should receive, so
// protocol.AsError recovers the wire error:
//
//	_, err := codec.DecodeRequest(ctx, data)
//	if errors.Is(err, middleware.ErrTooLarge) {
//	    failure := protocol.NewUncorrelatedFailure(protocol.AsError(err))
//	    ...
//	}
//
// # Custom Middleware
//
//	func Audit(sink chan<- string) middleware.Middleware {
//	    return func(next middleware.HandlerFunc) middleware.HandlerFunc {
//	        return func(ctx context.Context, op *middleware.Operation) error {
//	            err := next(ctx, op)
//	            sink <- op.Name()
//	            return err
//	        }
//	    }
//	}
package middleware
