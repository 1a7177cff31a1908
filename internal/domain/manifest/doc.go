// Package manifest resolves widget directories into widget records.
//
// A widget directory holds an entry document and an optional manifest
// (widget.json, or widget.yaml as a fallback). Manifest problems are soft
// failures: the record is built from caller hints plus defaults, so one
// corrupt widget never blocks discovery of the others.
//
// Defaults: size 250x100, position (20,20), autoload false.
package manifest
