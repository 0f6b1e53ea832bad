// Package catalog defines the capability cost tables consulted when a
// gridscript program is priced. A catalog maps capability names to costs,
// either fixed numbers or functions of the player's current state, organized
// as a default table plus an ordered list of named namespaces. Catalogs are
// built once (in code or from a YAML file) and treated as immutable; sharing
// one catalog across concurrent analyses is safe.
package catalog

// PlayerState is a read-only snapshot of the player passed through to
// dynamic cost functions at resolution time. Embedders that have no dynamic
// costs can pass nil.
type PlayerState struct {
	Level int
	Money float64
	Karma float64
	Mults map[string]float64
}

// Mult returns the named multiplier, or 1 if it is unset.
func (s *PlayerState) Mult(name string) float64 {
	if s == nil || s.Mults == nil {
		return 1
	}
	if m, ok := s.Mults[name]; ok {
		return m
	}
	return 1
}

// DynamicFunc computes a cost from a player-state snapshot.
type DynamicFunc func(*PlayerState) float64

type valueKind int

const (
	valueMalformed valueKind = iota
	valueFixed
	valueDynamic
)

// Value is the cost attached to a catalog entry: either a fixed amount or a
// function of player state. The zero Value is malformed and prices at 0.
type Value struct {
	kind   valueKind
	amount float64
	fn     DynamicFunc
}

// Fixed returns a Value that always costs n.
func Fixed(n float64) Value {
	return Value{kind: valueFixed, amount: n}
}

// Dynamic returns a Value whose cost is computed from player state.
func Dynamic(fn DynamicFunc) Value {
	if fn == nil {
		return Value{}
	}
	return Value{kind: valueDynamic, fn: fn}
}

// IsDynamic reports whether the value is computed from player state.
func (v Value) IsDynamic() bool { return v.kind == valueDynamic }

// Amount evaluates the value against the given player state. Malformed
// values and negative or NaN results price at 0; cost resolution never
// fails.
func (v Value) Amount(state *PlayerState) float64 {
	var n float64
	switch v.kind {
	case valueFixed:
		n = v.amount
	case valueDynamic:
		n = v.fn(state)
	default:
		return 0
	}
	if n != n || n < 0 {
		return 0
	}
	return n
}

// Namespace is a named sub-table of capability costs. The position of a
// namespace in Catalog.Namespaces is its resolution priority.
type Namespace struct {
	Name    string
	Entries map[string]Value
}

// Catalog is the full layered cost table for a host. The special costs
// (base overhead, the hacknet subsystem, and the two browser globals) are
// plain constants because those names resolve before any table is consulted.
type Catalog struct {
	BaseCost     float64
	HacknetCost  float64
	WindowCost   float64
	DocumentCost float64

	// Namespaces are consulted in order; the first table containing a
	// name wins and qualifies its display name.
	Namespaces []Namespace

	// Default holds bare-name entries consulted after every namespace.
	Default map[string]Value
}

// Lookup resolves a bare capability name against the namespace tables in
// priority order, then the default table. The returned display name is
// "<namespace>.<name>" for namespace hits and the bare name otherwise.
func (c *Catalog) Lookup(name string) (display string, v Value, ok bool) {
	for _, ns := range c.Namespaces {
		if val, hit := ns.Entries[name]; hit {
			return ns.Name + "." + name, val, true
		}
	}
	if val, hit := c.Default[name]; hit {
		return name, val, true
	}
	return "", Value{}, false
}

// Description is a displayable summary of one catalog entry.
type Description struct {
	Name    string  `json:"name"`
	Dynamic bool    `json:"dynamic"`
	Cost    float64 `json:"cost"` // 0 for dynamic entries
}

// Describe lists every priced name the catalog knows about, specials first,
// then namespaces in priority order, then the default table. Map-backed
// sections are not ordered within themselves.
func (c *Catalog) Describe() []Description {
	out := []Description{
		{Name: "hacknet", Cost: c.HacknetCost},
		{Name: "window", Cost: c.WindowCost},
		{Name: "document", Cost: c.DocumentCost},
	}
	for _, ns := range c.Namespaces {
		for name, v := range ns.Entries {
			out = append(out, Description{
				Name:    ns.Name + "." + name,
				Dynamic: v.IsDynamic(),
				Cost:    v.Amount(nil),
			})
		}
	}
	for name, v := range c.Default {
		out = append(out, Description{
			Name:    name,
			Dynamic: v.IsDynamic(),
			Cost:    v.Amount(nil),
		})
	}
	return out
}

// DefaultCatalog returns the cost tables built into the host. Embedders
// that need different pricing load a catalog from YAML instead.
func DefaultCatalog() *Catalog {
	return &Catalog{
		BaseCost:     1.6,
		HacknetCost:  4.0,
		WindowCost:   25.0,
		DocumentCost: 25.0,
		Namespaces: []Namespace{
			{
				Name: "stock",
				Entries: map[string]Value{
					"buy":      Fixed(2.5),
					"sell":     Fixed(2.5),
					"price":    Fixed(2.0),
					"forecast": Fixed(5.0),
				},
			},
			{
				Name: "gang",
				Entries: map[string]Value{
					"recruit": Dynamic(func(s *PlayerState) float64 {
						if s == nil {
							return 2.0
						}
						return 2.0 + s.Karma*0.05
					}),
					"ascend": Fixed(4.0),
					"price":  Fixed(3.0),
				},
			},
			{
				Name: "corp",
				Entries: map[string]Value{
					"hire":   Fixed(1.0),
					"expand": Fixed(6.0),
				},
			},
		},
		Default: map[string]Value{
			"hack":   Fixed(0.1),
			"grow":   Fixed(0.15),
			"weaken": Fixed(0.15),
			"scan":   Fixed(0.2),
			"exec":   Fixed(1.3),
			"kill":   Fixed(0.5),
			// Free builtins stay in the table so they resolve without
			// falling through to the unknown-name path, but they never
			// appear in a priced report.
			"sleep": Fixed(0),
			"print": Fixed(0),
		},
	}
}
