// Package middleware holds the HTTP middleware of the card API: request
// tracing and the admin shared-secret check.
package middleware
