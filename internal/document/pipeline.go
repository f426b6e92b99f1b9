package document

import (
	"fmt"
	"time"

	"github.com/aotfits/aot/internal/logger"
	"github.com/aotfits/aot/internal/schema"
)

// Validator is one named stage of document validation. It returns nil, a
// *schema.ValidationError or schema.ValidationErrors according to the policy
// in opts; any other error aborts the pipeline.
type Validator interface {
	Name() string
	Validate(doc *Document, opts ...schema.Option) error
}

// Pipeline runs validators in order and aggregates their violations
type Pipeline struct {
	validators []Validator
	log        logger.Logger
}

// NewPipeline creates a pipeline with the standard validators: required
// tables, header, per-table rules, references and subtypes.
func NewPipeline(log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	r := schema.Default()
	return &Pipeline{
		validators: []Validator{
			&RequiredTablesValidator{registry: r},
			&HeaderValidator{},
			&TablesValidator{registry: r},
			&ReferencesValidator{registry: r},
			&SubtypesValidator{registry: r},
		},
		log: log,
	}
}

// AddValidator adds a custom validator
func (p *Pipeline) AddValidator(v Validator) {
	p.validators = append(p.validators, v)
}

// Validators returns the names of the validators in run order.
func (p *Pipeline) Validators() []string {
	names := make([]string, len(p.validators))
	for i, v := range p.validators {
		names[i] = v.Name()
	}
	return names
}

// Run validates doc. Under FailFast it stops at the first violation; under
// CollectAll every validator runs and all violations are returned. Violations
// carry the YAML line they refer to when doc was parsed.
func (p *Pipeline) Run(doc *Document, opts ...schema.Option) error {
	o := schema.NewOptions(opts...)
	c := schema.NewCollector(o.Policy)

	for _, v := range p.validators {
		start := time.Now()
		before := c.Len()
		stop, err := c.Merge(v.Validate(doc, opts...))
		if err != nil {
			return fmt.Errorf("validator %s failed: %w", v.Name(), err)
		}
		p.log.Debug("validator finished",
			logger.F("validator", v.Name()),
			logger.F("violations", c.Len()-before),
			logger.F("elapsed", time.Since(start).Round(time.Microsecond)),
		)
		if stop {
			break
		}
	}

	return doc.annotate(c.Err())
}

// Validate runs the standard pipeline with the default logger.
func Validate(doc *Document, opts ...schema.Option) error {
	return NewPipeline(logger.Default()).Run(doc, opts...)
}

// RequiredTablesValidator reports mandatory tables missing from the document.
type RequiredTablesValidator struct {
	registry *schema.Registry
}

func (v *RequiredTablesValidator) Name() string { return "RequiredTables" }

func (v *RequiredTablesValidator) Validate(doc *Document, opts ...schema.Option) error {
	return v.registry.CheckRequiredTables(doc.Has, opts...)
}

// HeaderValidator checks the top-level keywords.
type HeaderValidator struct{}

func (v *HeaderValidator) Name() string { return "Header" }

func (v *HeaderValidator) Validate(doc *Document, opts ...schema.Option) error {
	return schema.ValidateHeader(doc.Header, opts...)
}

// TablesValidator checks every present table against its schema, in
// canonical order.
type TablesValidator struct {
	registry *schema.Registry
}

func (v *TablesValidator) Name() string { return "Tables" }

func (v *TablesValidator) Validate(doc *Document, opts ...schema.Option) error {
	c := schema.NewCollector(schema.NewOptions(opts...).Policy)
	for _, id := range doc.unknownTables() {
		_, err := v.registry.Lookup(id)
		if stop, other := c.Merge(err); stop {
			if other != nil {
				return other
			}
			return c.Err()
		}
	}
	for _, id := range doc.TableIDs() {
		if stop, err := c.Merge(v.registry.ValidateTable(id, doc.Tables[id], opts...)); stop {
			if err != nil {
				return err
			}
			break
		}
	}
	return c.Err()
}

// ReferencesValidator checks that every reference resolves to a row of the
// referenced table, when that table is present.
type ReferencesValidator struct {
	registry *schema.Registry
}

func (v *ReferencesValidator) Name() string { return "References" }

func (v *ReferencesValidator) Validate(doc *Document, opts ...schema.Option) error {
	c := schema.NewCollector(schema.NewOptions(opts...).Policy)
	idx := schema.IndexUIDs(doc.Tables)
	for _, id := range doc.TableIDs() {
		if stop, err := c.Merge(v.registry.ValidateReferences(id, doc.Tables[id], idx, opts...)); stop {
			if err != nil {
				return err
			}
			break
		}
	}
	return c.Err()
}

// SubtypesValidator checks secondary rows against the TYPE of their parent
// rows.
type SubtypesValidator struct {
	registry *schema.Registry
}

func (v *SubtypesValidator) Name() string { return "Subtypes" }

func (v *SubtypesValidator) Validate(doc *Document, opts ...schema.Option) error {
	return v.registry.ValidateSubtypes(doc.Tables, opts...)
}
