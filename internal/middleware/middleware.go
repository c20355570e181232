// Package middleware holds the global and route-level Echo middleware.
//
// It covers authentication (Clerk), request ids, request logging, New Relic
// tracing, CORS, rate and body limits, panic recovery and the global error
// handler.
package middleware
