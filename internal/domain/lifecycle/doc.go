// Package lifecycle turns registry records into launch requests.
//
// The controller runs the autostart sweep at boot, launches records and
// modules on demand, toggles autostart against the persisted value and
// reports windows orphaned by a cleanup pass. Launches are fire-and-forget:
// a failed dispatch is logged and never changes registry state.
package lifecycle
