// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different
// environments (development vs production) and integrates with the Fiber
// web framework used by the serve command.
//
// # Context Awareness
//
// The WithRayID helper extracts the request's RayID from a Fiber context
// and attaches it to the log entry, so all logs for one HTTP request can
// be correlated. Recipe runs log through a plain child logger instead.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
package logger
