package achievement

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
)

// Context is the read-only input every rule evaluates against.
type Context struct {
	Entries   []model.Entry
	Points    decimal.Decimal
	Streak    int
	Referrals int
	Presets   []model.Preset
	// PresetsErr is set when presets could not be loaded; tag rules report it.
	PresetsErr error
}

// Rule is one named achievement predicate.
type Rule struct {
	Code string
	// Tag marks rules that only look at preset tags.
	Tag      bool
	Evaluate func(*Context) (bool, error)
}

// Result is the outcome of evaluating one rule.
type Result struct {
	Code      string
	Satisfied bool
	Err       error
}

var (
	ErrNilRule       = errors.New("rule has no predicate")
	ErrEmptyCode     = errors.New("rule code cannot be empty")
	ErrDuplicateRule = errors.New("rule already registered")
)

// Registry keeps rules in registration order.
type Registry struct {
	rules []Rule
	codes map[string]struct{}
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codes: make(map[string]struct{})}
}

// NewDefaultRegistry creates a registry holding DefaultRules.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range DefaultRules() {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends a rule. Codes must be unique.
func (r *Registry) Register(rule Rule) error {
	if rule.Code == "" {
		return ErrEmptyCode
	}
	if rule.Evaluate == nil {
		return fmt.Errorf("%w: %s", ErrNilRule, rule.Code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[rule.Code]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Code)
	}
	r.codes[rule.Code] = struct{}{}
	r.rules = append(r.rules, rule)
	return nil
}

// Codes returns registered codes in order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		codes = append(codes, rule.Code)
	}
	return codes
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Evaluate runs every rule against c.
func (r *Registry) Evaluate(c *Context) []Result {
	return r.evaluate(c, func(Rule) bool { return true })
}

// EvaluateTags runs only the tag rules against c.
func (r *Registry) EvaluateTags(c *Context) []Result {
	return r.evaluate(c, func(rule Rule) bool { return rule.Tag })
}

func (r *Registry) evaluate(c *Context, keep func(Rule) bool) []Result {
	r.mu.RLock()
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if keep(rule) {
			rules = append(rules, rule)
		}
	}
	r.mu.RUnlock()

	if c == nil {
		c = &Context{}
	}
	results := make([]Result, 0, len(rules))
	for _, rule := range rules {
		ok, err := run(rule, c)
		results = append(results, Result{Code: rule.Code, Satisfied: ok && err == nil, Err: err})
	}
	return results
}

// run isolates a single rule; a panic becomes an error result.
func run(rule Rule, c *Context) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			err = fmt.Errorf("rule %s panicked: %v", rule.Code, p)
		}
	}()
	return rule.Evaluate(c)
}

// Satisfied returns the codes of satisfied results, keeping their order.
func Satisfied(results []Result) []string {
	codes := make([]string, 0, len(results))
	for _, res := range results {
		if res.Satisfied {
			codes = append(codes, res.Code)
		}
	}
	return codes
}

// Failed returns the results that ended with an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
