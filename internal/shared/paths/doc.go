// Package paths provides widget path normalization and resolution.
//
// Stored widget paths are repository-relative, use forward slashes and always
// start with the "widgets" root segment:
//
//	widgets/clock/index.html
//
// At launch time the root segment is replaced by the configured widget base
// path, so the same record works on every platform.
//
// # Usage
//
//	stored := paths.NormalizeWidgetPath(`clock\index.html`) // widgets/clock/index.html
//	file, err := paths.Resolve("/home/me/widgets", stored)   // /home/me/widgets/clock/index.html
package paths
