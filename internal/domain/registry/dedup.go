package registry

import "github.com/ronmurphy/window-manager-electron-sub001/internal/shared/types"

// Dedup collapses records sharing a name to the most recently updated one.
//
// Records are scanned in order. The first record seen for a name is kept
// until a later one has a strictly greater LastUpdated; equal timestamps
// keep the earlier record. The output preserves the order in which each
// name first appeared, not the order of the winning records.
func Dedup(records []types.WidgetRecord) (kept, removed []types.WidgetRecord) {
	best := make(map[string]int, len(records)) // name -> index into kept
	kept = make([]types.WidgetRecord, 0, len(records))

	for _, rec := range records {
		i, seen := best[rec.Name]
		if !seen {
			best[rec.Name] = len(kept)
			kept = append(kept, rec)
			continue
		}
		if rec.LastUpdated > kept[i].LastUpdated {
			removed = append(removed, kept[i])
			kept[i] = rec
		} else {
			removed = append(removed, rec)
		}
	}
	return kept, removed
}
