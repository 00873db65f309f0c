package codec

import (
	"fmt"
	"sort"
	"strings"
)

// Param names a codec parameter.
type Param int

const (
	// ParamLevel is the compression level. It trades speed for ratio only.
	ParamLevel Param = iota + 1

	// ParamWorkers is the number of worker threads used inside the codec.
	// It must never change the decoded output.
	ParamWorkers

	// ParamStrategy selects the match finding tactic, see Strategy.
	ParamStrategy
)

var paramNames = map[Param]string{
	ParamLevel:    "compressionLevel",
	ParamWorkers:  "workerThreads",
	ParamStrategy: "strategy",
}

func (p Param) String() string {
	if s, ok := paramNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Param(%d)", int(p))
}

// ParseParam returns the Param called name. Matching is case insensitive.
func ParseParam(name string) (Param, error) {
	for p, s := range paramNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
}

// Strategy is the zstd match finding tactic, in zstd's numbering.
type Strategy int

const (
	StrategyFast Strategy = iota + 1
	StrategyDFast
	StrategyGreedy
	StrategyLazy
	StrategyLazy2
	StrategyBtLazy2
	StrategyBtOpt
	StrategyBtUltra
	StrategyBtUltra2
)

var strategyNames = []string{"", "fast", "dfast", "greedy", "lazy", "lazy2", "btlazy2", "btopt", "btultra", "btultra2"}

func (s Strategy) String() string {
	if s >= StrategyFast && s <= StrategyBtUltra2 {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the strategy called name.
func ParseStrategy(name string) (Strategy, error) {
	for i, s := range strategyNames {
		if i > 0 && strings.EqualFold(s, name) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidParameter, name)
}

// Range is an inclusive range of accepted values.
type Range struct {
	Min, Max int
}

func (r Range) contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Schema lists the parameters a codec recognises and their ranges.
type Schema map[Param]Range

// Has reports whether p is recognised.
func (s Schema) Has(p Param) bool {
	_, ok := s[p]
	return ok
}

func (s Schema) check(p Param, v int) error {
	r, ok := s[p]
	if !ok {
		return fmt.Errorf("%w: %v is not supported", ErrInvalidParameter, p)
	}
	if !r.contains(v) {
		return fmt.Errorf("%w: %v=%d out of range [%d, %d]", ErrInvalidParameter, p, v, r.Min, r.Max)
	}
	return nil
}

// Entry is a single parameter assignment.
type Entry struct {
	Param Param
	Value int
}

func (e Entry) String() string {
	if e.Param == ParamStrategy {
		return fmt.Sprintf("%v=%v", e.Param, Strategy(e.Value))
	}
	return fmt.Sprintf("%v=%d", e.Param, e.Value)
}

// Params is an ordered set of parameter assignments, validated against a
// codec schema as they are made.
// The zero value is not usable; create one with NewParams.
type Params struct {
	schema  Schema
	entries []Entry
}

// NewParams returns an empty parameter set checked against s.
func NewParams(s Schema) *Params {
	return &Params{schema: s}
}

// Set assigns v to p.
// Assigning a param again keeps its original position.
func (p *Params) Set(param Param, v int) error {
	if err := p.schema.check(param, v); err != nil {
		return err
	}
	for i := range p.entries {
		if p.entries[i].Param == param {
			p.entries[i].Value = v
			return nil
		}
	}
	p.entries = append(p.entries, Entry{Param: param, Value: v})
	return nil
}

// SetByName is Set with the parameter given by name.
func (p *Params) SetByName(name string, v int) error {
	param, err := ParseParam(name)
	if err != nil {
		return err
	}
	return p.Set(param, v)
}

// Get returns the value assigned to param.
func (p *Params) Get(param Param) (int, bool) {
	if p == nil {
		return 0, false
	}
	for _, e := range p.entries {
		if e.Param == param {
			return e.Value, true
		}
	}
	return 0, false
}

// Len returns the number of assigned parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns the assignments in the order they were first made.
func (p *Params) Entries() []Entry {
	if p == nil {
		return nil
	}
	return append([]Entry(nil), p.entries...)
}

// Canonical returns the assignments ordered by parameter.
// Sessions apply in this order so insertion order never affects output.
func (p *Params) Canonical() []Entry {
	e := p.Entries()
	sort.Slice(e, func(i, j int) bool { return e[i].Param < e[j].Param })
	return e
}

// ApplyTo installs the whole set on s.
func (p *Params) ApplyTo(s Session) error {
	if err := s.Apply(p); err != nil {
		return fmt.Errorf("apply %v: %w", p, err)
	}
	return nil
}

// validate checks every entry against s.
// Sessions call it before touching their own state.
func (p *Params) validate(s Schema) error {
	for _, e := range p.Entries() {
		if err := s.check(e.Param, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Params) String() string {
	e := p.Entries()
	s := make([]string, len(e))
	for i := range e {
		s[i] = e[i].String()
	}
	return "{" + strings.Join(s, ", ") + "}"
}
