// Package memory provides in-process implementations of the store
// interfaces. They back local development (database.driver=memory) and the
// service-level tests.
package memory
