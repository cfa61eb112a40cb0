// Package ws implements the WebSocket hub for pharmames-server.
//
// Hub manages a set of connected clients and broadcasts the live production
// lines to all of them every stream interval (server.stream.interval).
//
// New(store, interval, origins) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker and blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// lines immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "lines",
//	  "data":  [ /* same schema as GET /api/v1/lines */ ],
//	  "generated_at": "2024-03-01T08:00:00Z"
//	}
//
// Browser origins are checked against server.cors.allowed_origins. The hub
// is mounted at /ws/stream.
package ws
