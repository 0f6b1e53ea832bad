package catalog

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
)

// catalogFile is the YAML shape of a catalog. Namespace order in the file
// is the resolution priority order.
type catalogFile struct {
	BaseCost   float64              `yaml:"base_cost"`
	Special    map[string]float64   `yaml:"special"`
	Namespaces []namespaceFile      `yaml:"namespaces"`
	Default    map[string]valueFile `yaml:"default"`
}

type namespaceFile struct {
	Name    string               `yaml:"name"`
	Entries map[string]valueFile `yaml:"entries"`
}

// valueFile accepts either a plain number (a fixed cost) or a mapping with
// an "expr" key (a dynamic cost compiled against the player environment).
type valueFile struct {
	fixed  float64
	expr   string
	isExpr bool
}

func (v *valueFile) UnmarshalYAML(b []byte) error {
	var n float64
	if err := yaml.Unmarshal(b, &n); err == nil {
		v.fixed = n
		return nil
	}

	var m struct {
		Expr string `yaml:"expr"`
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return err
	}
	if m.Expr == "" {
		return fmt.Errorf("cost entry must be a number or have an expr key")
	}
	v.expr = m.Expr
	v.isExpr = true
	return nil
}

// exprEnv is the environment visible to dynamic cost expressions.
func exprEnv(state *PlayerState) map[string]any {
	if state == nil {
		state = &PlayerState{}
	}
	return map[string]any{"player": state}
}

func (v valueFile) compile() (Value, error) {
	if !v.isExpr {
		return Fixed(v.fixed), nil
	}

	program, err := expr.Compile(v.expr, expr.Env(exprEnv(nil)), expr.AsFloat64())
	if err != nil {
		return Value{}, fmt.Errorf("compiling cost expression %q: %w", v.expr, err)
	}

	return Dynamic(dynamicFromProgram(program)), nil
}

// dynamicFromProgram wraps a compiled expression as a DynamicFunc. A failed
// run prices at 0, matching the malformed-value contract.
func dynamicFromProgram(program *vm.Program) DynamicFunc {
	return func(state *PlayerState) float64 {
		out, err := expr.Run(program, exprEnv(state))
		if err != nil {
			return 0
		}
		n, ok := out.(float64)
		if !ok {
			return 0
		}
		return n
	}
}

// Parse builds a Catalog from YAML. Dynamic cost expressions are compiled
// once here; resolution later never compiles or fails.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	cat := &Catalog{
		BaseCost:     file.BaseCost,
		HacknetCost:  file.Special["hacknet"],
		WindowCost:   file.Special["window"],
		DocumentCost: file.Special["document"],
		Default:      make(map[string]Value, len(file.Default)),
	}

	for _, ns := range file.Namespaces {
		entries := make(map[string]Value, len(ns.Entries))
		for name, vf := range ns.Entries {
			v, err := vf.compile()
			if err != nil {
				return nil, fmt.Errorf("namespace %s, entry %s: %w", ns.Name, name, err)
			}
			entries[name] = v
		}
		cat.Namespaces = append(cat.Namespaces, Namespace{Name: ns.Name, Entries: entries})
	}

	for name, vf := range file.Default {
		v, err := vf.compile()
		if err != nil {
			return nil, fmt.Errorf("default entry %s: %w", name, err)
		}
		cat.Default[name] = v
	}

	return cat, nil
}

// Load reads and parses a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// LoadPlayerState reads a player-state snapshot from a YAML file.
func LoadPlayerState(path string) (*PlayerState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading player state: %w", err)
	}

	var state struct {
		Level int                `yaml:"level"`
		Money float64            `yaml:"money"`
		Karma float64            `yaml:"karma"`
		Mults map[string]float64 `yaml:"mults"`
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing player state: %w", err)
	}

	return &PlayerState{
		Level: state.Level,
		Money: state.Money,
		Karma: state.Karma,
		Mults: state.Mults,
	}, nil
}
