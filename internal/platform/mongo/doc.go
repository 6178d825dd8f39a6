// Package mongo provides MongoDB implementations of the store interfaces
// defined in internal/store using the official driver. Dashboard grouping
// runs as a $group aggregation on the server.
package mongo
