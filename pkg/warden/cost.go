package warden

import "github.com/duskfall/warden/pkg/warden/catalog"

// EntryKind classifies a priced usage entry.
type EntryKind string

const (
	// KindBase is the fixed overhead every script pays.
	KindBase EntryKind = "base"
	// KindIntrinsic covers engine-managed subsystems such as hacknet.
	KindIntrinsic EntryKind = "intrinsic"
	// KindBrowser covers the browser globals window and document.
	KindBrowser EntryKind = "browser"
	// KindFunction covers everything priced through the catalog tables.
	KindFunction EntryKind = "function"
)

// UsageEntry is one priced capability reference. Entries in a finalized
// CostResult always have Cost > 0.
type UsageEntry struct {
	Kind EntryKind `json:"kind"`
	Name string    `json:"name"`
	Cost float64   `json:"cost"`
}

// CostResult is the priced summary of a script's capability references.
// Total equals the sum of the entry costs; Entries preserve first-seen
// order of the resolved names.
type CostResult struct {
	Total   float64      `json:"total"`
	Entries []UsageEntry `json:"entries"`
}

// AggregateCost prices the given capability names against the catalog.
// Duplicate names collapse to a single entry, unknown names price at zero
// and vanish from the result, and dynamic catalog entries are evaluated
// against the given player state. The call cannot fail: malformed or
// unresolved entries degrade to zero cost and are filtered out.
func AggregateCost(state *catalog.PlayerState, names []string, cat *catalog.Catalog) CostResult {
	entries := []UsageEntry{
		{Kind: KindBase, Name: "base", Cost: cat.BaseCost},
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, resolveEntry(state, name, cat))
	}

	result := CostResult{Entries: make([]UsageEntry, 0, len(entries))}
	for _, e := range entries {
		if e.Cost > 0 {
			result.Entries = append(result.Entries, e)
			result.Total += e.Cost
		}
	}
	return result
}

// resolveEntry prices one capability name. Resolution order: the special
// names (engine intrinsics and browser globals), then the namespace tables
// in catalog priority order, then the default table, then zero.
func resolveEntry(state *catalog.PlayerState, name string, cat *catalog.Catalog) UsageEntry {
	switch name {
	case "hacknet":
		return UsageEntry{Kind: KindIntrinsic, Name: name, Cost: cat.HacknetCost}
	case "window":
		return UsageEntry{Kind: KindBrowser, Name: name, Cost: cat.WindowCost}
	case "document":
		return UsageEntry{Kind: KindBrowser, Name: name, Cost: cat.DocumentCost}
	}

	if display, v, ok := cat.Lookup(name); ok {
		return UsageEntry{Kind: KindFunction, Name: display, Cost: v.Amount(state)}
	}

	// Unknown names are not errors; they price at zero and are dropped.
	return UsageEntry{Kind: KindFunction, Name: name, Cost: 0}
}
