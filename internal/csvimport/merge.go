package csvimport

import "github.com/JonMunkholm/leopold/internal/shop"

// MergeToys appends incoming entries whose normalized name is not already
// present and returns the merged catalog with the number added. Existing
// order is preserved and neither input is modified.
//
// Name is the only identity key: an entry that is renamed in the sheet is
// imported again as a new entry.
func MergeToys(existing, incoming []shop.Toy) ([]shop.Toy, int) {
	names := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]shop.Toy, 0, len(existing)+len(incoming))
	for _, t := range existing {
		names[t.NormalizedName()] = true
		merged = append(merged, t)
	}

	added := 0
	for _, t := range incoming {
		key := t.NormalizedName()
		if names[key] {
			continue
		}
		names[key] = true
		merged = append(merged, t)
		added++
	}
	return merged, added
}

// MergeCategories appends incoming categories whose id is not already present.
func MergeCategories(existing, incoming []shop.Category) ([]shop.Category, int) {
	ids := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]shop.Category, 0, len(existing)+len(incoming))
	for _, c := range existing {
		ids[c.ID] = true
		merged = append(merged, c)
	}

	added := 0
	for _, c := range incoming {
		if ids[c.ID] {
			continue
		}
		ids[c.ID] = true
		merged = append(merged, c)
		added++
	}
	return merged, added
}
