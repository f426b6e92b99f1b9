package schema

import "fmt"

// Policy decides whether a validation call stops at the first violation or
// collects every violation it finds.
type Policy int

const (
	// FailFast returns the first violation as a *ValidationError.
	FailFast Policy = iota
	// CollectAll returns every violation of the call as ValidationErrors.
	CollectAll
)

// String returns the configuration name of the policy
func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case CollectAll:
		return "collect-all"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "fail-fast", "":
		return FailFast, nil
	case "collect-all":
		return CollectAll, nil
	default:
		return FailFast, fmt.Errorf("unknown validation policy '%s' (supported: fail-fast, collect-all)", name)
	}
}

// Options configures a validation call.
type Options struct {
	Policy Policy
}

// Option mutates Options.
type Option func(*Options)

// WithPolicy sets the violation policy.
func WithPolicy(p Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{Policy: FailFast}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Collector accumulates violations under a policy. Add reports whether the
// caller should stop.
type Collector struct {
	policy Policy
	errs   ValidationErrors
}

// NewCollector creates a collector for the given policy.
func NewCollector(p Policy) *Collector {
	return &Collector{policy: p}
}

// Add records a violation and returns true when validation must stop.
func (c *Collector) Add(v ValidationError) bool {
	c.errs = append(c.errs, v)
	return c.policy == FailFast
}

// Merge records the violations contained in err. Errors that are not
// violations are returned unchanged.
func (c *Collector) Merge(err error) (stop bool, other error) {
	if err == nil {
		return false, nil
	}
	violations := AsValidationErrors(err)
	if violations == nil {
		return true, err
	}
	for _, v := range violations {
		if c.Add(v) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of recorded violations.
func (c *Collector) Len() int {
	return len(c.errs)
}

// Err returns nil, the single violation, or all violations, depending on the policy.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	if c.policy == FailFast {
		v := c.errs[0]
		return &v
	}
	return c.errs
}
