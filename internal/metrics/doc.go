// Package metrics records application metrics on a private prometheus
// registry and reads runtime memory statistics.
package metrics
