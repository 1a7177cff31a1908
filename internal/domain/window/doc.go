// Package window tracks the windows the shell has open.
//
// The manager is the in-process window collaborator: it receives launch
// requests from the lifecycle controller, keeps one window per module and
// emits events for every state change so connected clients can follow.
//
// States:
//   - running: visible
//   - minimized: hidden, still tracked
//   - stopped: closed, no longer tracked
//
// Example Usage:
//
//	wm := window.NewManager(logger).WithNotifier(hub.BroadcastWindow)
//	win, err := wm.Launch(ctx, types.LaunchRequest{Title: "Clock", ContentPath: path, IsWidget: true, ID: rec.ID})
//	wm.Minimize(win.ID)
package window
