// Package middlewares provides middleware for plain applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. It reuses an ID from the
// incoming headers or generates a UUID:
//
//	app := plain.New(
//	    plain.WithLogger("web", middlewares.RequestIDExtractor()),
//	    plain.WithMiddleware(middlewares.RequestID()),
//	)
//
// RequestIDExtractor adds request_id to every log entry written through the
// request context.
//
// # Recover
//
// Recover turns panics into a PanicError, which selects the 500 error route.
// The error route reads the value with Context.Failure:
//
//	app.Error(500, func(c plain.Context, _ ...string) (any, error) {
//	    if pe, ok := middlewares.AsPanicError(c.Failure()); ok {
//	        c.LogError("panic", "value", pe.Value)
//	    }
//	    return "Internal Server Error", nil
//	})
//
// # Timeout
//
// Timeout bounds handler execution and returns a TimeoutError, which selects
// the 504 error route. The handler goroutine continues after the timeout;
// use GetTimeoutContext in long-running operations to stop early.
//
// # CORS
//
// CORS is net/http middleware so preflight requests never reach the route
// dispatcher:
//
//	app := plain.New(
//	    plain.WithHTTPMiddleware(middlewares.CORS(
//	        middlewares.WithAllowOrigins("https://app.example.com"),
//	        middlewares.WithAllowCredentials(),
//	    )),
//	)
//
// # Recommended Order
//
//	plain.WithMiddleware(
//	    middlewares.RequestID(),            // first: ID available to all later logs
//	    middlewares.Recover(),              // second: catch panics from timeout and handlers
//	    middlewares.Timeout(5*time.Second), // third: bound handler time
//	)
package middlewares
