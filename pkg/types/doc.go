// Package types defines shared Go types used by both the agent and server.
// LineSnapshot is the record the agent ships for every scrape of a press and
// the server stores, streams and alerts on.
package types
