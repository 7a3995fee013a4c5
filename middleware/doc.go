// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Middleware

  - WithLogging: request/completion logging with duration
  - RequireAdmin: admin session cookie enforcement for /admin routes
  - CORS: cross-origin support for browser frontends

# Helpers

  - JSONResponse / ErrorResponse: consistent JSON output
  - ParseJSONBody: request body decoding
  - GetClientIP: client IP extraction behind proxies
  - SessionFromContext: admin session accessor for guarded handlers
*/
package middleware
