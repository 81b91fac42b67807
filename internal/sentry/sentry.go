package sentry

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// ignoredErrors contains error messages that should be logged but not sent to Sentry.
// These are expected whenever the app runs without a reachable database (the
// in-memory fallback covers them) or when clients disconnect mid-request.
var ignoredErrors = []string{
	"no database connection available", // running in zero-config demo mode
	"connection refused",               // database host down; auth falls back
	"connection reset by peer",         // client disconnected abruptly
	"broken pipe",                      // write to closed connection (client already gone)
	"use of closed network connection", // operation on already closed connection
	"EOF",                              // client closed connection without graceful shutdown
}

// shouldIgnore checks if an error should be filtered out from Sentry.
func shouldIgnore(err error) bool {
	if err == nil {
		return true
	}

	// Socket timeouts are noise here: a slow or absent database already
	// degrades gracefully.
	type timeoutError interface{ Timeout() bool }
	if te, ok := err.(timeoutError); ok && te.Timeout() {
		return true
	}

	errStr := err.Error()
	for _, ignored := range ignoredErrors {
		if strings.Contains(errStr, ignored) {
			return true
		}
	}
	return false
}

// Init configures the Sentry client. A missing DSN disables reporting;
// CaptureError then only logs locally.
func Init(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// Flush drains pending events before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// Middleware returns the gin middleware that binds a Sentry hub to each
// request so handlers can report with request context.
func Middleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

// CaptureError logs an error locally and reports it to Sentry.
// Use this for errors outside of HTTP request context (startup, background tasks).
func CaptureError(err error, message string) {
	log.Printf("%s: %v", message, err)
	if shouldIgnore(err) {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("message", message)
		sentry.CaptureException(err)
	})
}

// CaptureErrorWithContext logs an error and reports it to Sentry with HTTP request context.
// This preserves request data (URL, method, client IP) in Sentry events.
func CaptureErrorWithContext(c *gin.Context, err error, message string) {
	log.Printf("%s: %v", message, err)
	if shouldIgnore(err) {
		return
	}
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("message", message)
			if c != nil && c.Request != nil {
				scope.SetTag("http.method", c.Request.Method)
				scope.SetTag("http.path", c.Request.URL.Path)
				scope.SetExtra("http.remote_ip", c.ClientIP())
			}
			hub.CaptureException(err)
		})
	} else {
		// Fallback to global capture if no hub in context
		CaptureError(err, message)
	}
}

// CaptureErrorf logs and reports an error with a formatted message.
func CaptureErrorf(err error, format string, args ...interface{}) {
	CaptureError(err, fmt.Sprintf(format, args...))
}
