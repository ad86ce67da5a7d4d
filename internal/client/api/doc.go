// Package api is a thin HTTP client for the ICARUS REST API.
//
// A Client keeps the session cookie issued by /api/register and /api/login in
// a cookie jar, so calls made after a successful login are authenticated
// until Logout is called or the session expires.
//
// Non-2xx responses are returned as *APIError. APIError unwraps to the
// matching sentinel from internal/common, so callers can write
//
//	if errors.Is(err, common.ErrorForbidden) { ... }
package api
