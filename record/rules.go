package record

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
)

// Rules describes the row filter as configuration rather than code, e.g.
//
//	drop:
//	  - rowNumber
//	rename:
//	  - from: name
//	    to: title
//	set:
//	  - field: slug
//	    expr: lower(replace(title, " ", "-"))
//	skip: not (id matches "^[0-9]+$")
//
// Rules are applied in the order drop, rename, set, skip. Expressions are evaluated with the
// record fields as variables and undefined fields evaluate to nil.
type Rules struct {
	Drop   []string     `yaml:"drop"`
	Rename []RenameRule `yaml:"rename"`
	Set    []SetRule    `yaml:"set"`
	Skip   string       `yaml:"skip"`
}

type RenameRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type SetRule struct {
	Field string `yaml:"field"`
	Expr  string `yaml:"expr"`
}

// LoadRules reads a YAML rules file.
func LoadRules(file string) (*Rules, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	return ParseRules(bytes)
}

func ParseRules(bytes []byte) (*Rules, error) {
	rules := Rules{}
	if err := yaml.Unmarshal(bytes, &rules); err != nil {
		return nil, fmt.Errorf("invalid rules (%w)", err)
	}

	for _, r := range rules.Rename {
		if r.From == "" || r.To == "" {
			return nil, fmt.Errorf("invalid rename rule '%v' -> '%v'", r.From, r.To)
		}
	}

	for _, s := range rules.Set {
		if s.Field == "" || s.Expr == "" {
			return nil, fmt.Errorf("invalid set rule for field '%v'", s.Field)
		}
	}

	return &rules, nil
}

// Filter compiles the rules into a single row filter.
func (rules Rules) Filter() (Filter, error) {
	type computed struct {
		field   string
		program *vm.Program
	}

	var skip *vm.Program
	var set []computed

	for _, s := range rules.Set {
		program, err := expr.Compile(s.Expr, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("invalid expression for field '%v' (%w)", s.Field, err)
		}

		set = append(set, computed{field: s.Field, program: program})
	}

	if rules.Skip != "" {
		program, err := expr.Compile(rules.Skip, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("invalid skip expression (%w)", err)
		}

		skip = program
	}

	drop := append([]string{}, rules.Drop...)
	rename := append([]RenameRule{}, rules.Rename...)

	return func(r Record) (Record, bool, error) {
		for _, field := range drop {
			r.Delete(field)
		}

		for _, v := range rename {
			r.Rename(v.From, v.To)
		}

		for _, c := range set {
			v, err := expr.Run(c.program, r.Map())
			if err != nil {
				return r, false, fmt.Errorf("error evaluating '%v' (%w)", c.field, err)
			}

			r.Set(c.field, v)
		}

		if skip != nil {
			v, err := expr.Run(skip, r.Map())
			if err != nil {
				return r, false, fmt.Errorf("error evaluating skip expression (%w)", err)
			}

			if b, ok := v.(bool); ok && b {
				return r, true, nil
			}
		}

		return r, false, nil
	}, nil
}
