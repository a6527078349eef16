// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//   - Compatibility with tornago's slog-based logging
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Session identifiers and authentication tokens
//
// Lookup targets pass through unmasked: operators need to see what was
// searched, and identifiers like usernames are not credentials. Anything
// that could authenticate a request, however, is masked even in verbose
// mode, because server logs tend to be shared and stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("upstream request",
//	    "authorization", "Bearer abc123",  // Will be masked
//	    "url", "https://api.github.com/users/alice",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
