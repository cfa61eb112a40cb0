// Package shipper sends LineSnapshot records to pharmames-server as JSON over
// HTTP (POST <server_endpoint>/api/v1/lines/snapshots).
//
// Shipper.Ship() is non-blocking: snapshots are placed in an in-memory
// channel (default capacity 1000). When the buffer is full the oldest entry is
// evicted so the latest line state is always preserved.
//
// Shipper.Run() drains the buffer in a loop, retrying the in-flight snapshot
// with truncated exponential backoff (1s→60s, ±25% jitter) on connection
// errors, 429 and 5xx responses. Other 4xx responses (bad request,
// unauthorized, forbidden) discard the snapshot immediately.
//
// Auth: API key header (server_auth.mode: apikey) or client certificates
// (server_auth.mode: mtls).
package shipper
