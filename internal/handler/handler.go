// Package handler is the HTTP layer between the router and the services.
//
// Handlers bind and validate request payloads through the validation
// package, call a service and write the response. Every typed endpoint runs
// through the same pipeline in handler.go, which adds logging and New Relic
// attributes.
package handler
