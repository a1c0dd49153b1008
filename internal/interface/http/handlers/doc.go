// Package handlers contains reusable HTTP building blocks for the REST API:
// gin middleware, the JSON response envelope and health checks.
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0", 2*time.Second)
//	checker.AddCheck("database", handlers.NewPingCheck(conn))
//	checker.AddCheck("redis", handlers.NewPingCheck(redisPinger))
//
//	status := checker.Check(ctx)
//
// # Middleware
//
// Middleware is written against gin and is installed by the server in this
// order: Recovery, RequestID, AccessLog, SecurityHeaders, RequestSizeLimit,
// Timeout. RequestID stores the ID in the gin context under
// RequestIDKey; commands receive it as their correlation ID.
//
// # Responses
//
// Every endpoint answers with JSONResponse. Errors carry a stable machine
// code (APIError.Code) and a human-readable message.
package handlers
