// Package store keeps the latest LineSnapshot per press in memory. Entries
// older than the configured TTL are hidden from reads and removed by the
// background eviction loop.
package store
