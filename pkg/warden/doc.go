// Package warden is an embeddable static analyzer for gridscript, the
// small JavaScript-like language hosted by the grid automation sandbox.
// Before a script is accepted for execution the host wants two answers:
// how much of the resource budget will it reserve, and can it ever stall
// the cooperative scheduler.
//
// # Cost analysis
//
// Every runtime capability a script references carries a cost. Costs live
// in a layered catalog: a handful of special names (the hacknet subsystem
// and the browser globals window and document) resolve first at fixed
// prices, then the catalog's named namespaces are consulted in a fixed
// priority order, then a default table. Entries are either fixed numbers
// or functions of the player's current state. Referencing a capability
// twice costs the same as referencing it once, and names the catalog does
// not know price at zero and disappear from the report.
//
//	a := warden.New()
//	report, err := a.Analyze("worm.gs", source, player)
//	// report.Cost.Total, report.Cost.Entries
//
// # Loop safety
//
// The host preempts scripts only at await expressions. A while loop whose
// test is the literal true and whose body never awaits can therefore hang
// the scheduler forever; Analyze reports the first such loop's line so the
// host can reject the script up front.
//
// # Configuration
//
// Catalogs load from YAML (see the catalog package); dynamic costs are
// expressions over the player snapshot, compiled once at load time. The
// dashboard package serves live analysis over HTTP and websockets, and
// cmd/warden wraps everything in a CLI.
//
// All analysis is pure and synchronous: an Analyzer holds only immutable
// configuration and may be shared across goroutines freely.
package warden
