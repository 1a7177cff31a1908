// Package ws pushes registry and window events to the shell UI.
//
// Message Types (Server → Client):
//   - hello: initial snapshot (projection, windows, theme)
//   - projection: the module and widget views changed
//   - window: a window opened, was raised, minimized, restored or closed
//   - pong / error
//
// Message Types (Client → Server):
//   - ping: keep-alive
//   - snapshot: resend the hello snapshot
//
// Example Usage:
//
//	hub := ws.NewHub(snapshot, logger)
//	reg.Subscribe(func(p types.Projection) { hub.BroadcastEvent(ws.TypeProjection, "", p) })
//	router.GET("/stream", hub.HandleConnection)
package ws
