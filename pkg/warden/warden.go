package warden

import (
	"fmt"

	"github.com/duskfall/warden/pkg/warden/catalog"
	"github.com/duskfall/warden/pkg/warden/parser"
)

// Limits bounds the scripts an Analyzer will accept. Scripts beyond either
// bound are rejected before analysis starts.
type Limits struct {
	MaxSourceLen int // bytes of source text
	MaxASTNodes  int // parsed AST size
}

// DefaultLimits returns bounds generous enough for any hand-written script.
func DefaultLimits() Limits {
	return Limits{
		MaxSourceLen: 256 * 1024,
		MaxASTNodes:  50000,
	}
}

// Analyzer is the front door of the package: it parses gridscript source,
// prices its capability references against a catalog, and scans for loops
// that can never yield. An Analyzer is immutable after construction and
// safe for concurrent use.
type Analyzer struct {
	catalog *catalog.Catalog
	limits  Limits
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCatalog sets the cost catalog consulted during pricing.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(a *Analyzer) {
		if cat != nil {
			a.catalog = cat
		}
	}
}

// WithLimits sets the script acceptance bounds.
func WithLimits(l Limits) Option {
	return func(a *Analyzer) {
		a.limits = l
	}
}

// New creates an Analyzer with the built-in catalog and default limits.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		catalog: catalog.DefaultCatalog(),
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewWithCatalog is shorthand for New(WithCatalog(cat)).
func NewWithCatalog(cat *catalog.Catalog) *Analyzer {
	return New(WithCatalog(cat))
}

// Catalog returns the analyzer's cost catalog (shared, read-only).
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// Report is the outcome of analyzing one script.
type Report struct {
	Script         string     `json:"script"`
	Cost           CostResult `json:"cost"`
	Capabilities   []string   `json:"capabilities"`
	Unsafe         bool       `json:"unsafe"`
	UnsafeLoopLine int        `json:"unsafe_loop_line,omitempty"`
}

// Analyze runs the full static pipeline over one script: parse, enforce
// limits, extract capability names, price them, and scan for unsafe loops.
// The only error is a rejected script (parse failure or a limit breach);
// pricing and the loop scan cannot fail.
func (a *Analyzer) Analyze(name, source string, state *catalog.PlayerState) (*Report, error) {
	if a.limits.MaxSourceLen > 0 && len(source) > a.limits.MaxSourceLen {
		return nil, fmt.Errorf("script %s: source length %d exceeds limit (%d)",
			name, len(source), a.limits.MaxSourceLen)
	}

	lexer := parser.NewLexer(source)
	p := parser.New(lexer)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("script %s: parse errors: %v", name, errs)
	}

	if a.limits.MaxASTNodes > 0 {
		if n := program.CountNodes(); n > a.limits.MaxASTNodes {
			return nil, fmt.Errorf("script %s: complexity (%d nodes) exceeds limit (%d)",
				name, n, a.limits.MaxASTNodes)
		}
	}

	names := ExtractCapabilities(program)
	cost := AggregateCost(state, names, a.catalog)
	line, unsafe := FindUnsafeLoop(program, source)

	return &Report{
		Script:         name,
		Cost:           cost,
		Capabilities:   names,
		Unsafe:         unsafe,
		UnsafeLoopLine: line,
	}, nil
}
