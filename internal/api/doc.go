// Package api exposes the task board over HTTP. Handlers decode and validate
// requests, resolve the authenticated actor, call the services and render
// JSON responses; errors are mapped to status codes in one place.
package api
