package schema

import (
	"fmt"
	"time"

	"github.com/aotfits/aot/internal/types"
)

// FormatVersion is the current AOT format version. It changes only with a
// breaking schema revision.
const FormatVersion = "0.5"

// Top-level header keywords.
const (
	KeywordVersion       = "AOT-VERS"
	KeywordAOMode        = "AO-MODE"
	KeywordTimeSystem    = "TIMESYS"
	KeywordDateBeginning = "DATE-BEG"
	KeywordDateEnd       = "DATE-END"
	KeywordStrehlRatio   = "STREHL-R"
	KeywordTemporalError = "TEMP-ERR"
	KeywordConfig        = "CONFIG"
)

// TimeSystemUTC is the only supported time system.
const TimeSystemUTC = "UTC"

// AO modes accepted in the AO-MODE keyword.
const (
	AOModeSCAO = "SCAO"
	AOModeSLAO = "SLAO"
	AOModeGLAO = "GLAO"
	AOModeMOAO = "MOAO"
	AOModeLTAO = "LTAO"
	AOModeMCAO = "MCAO"
)

// Keyword describes one top-level header keyword.
type Keyword struct {
	Name        string     `yaml:"name"`
	Kind        types.Kind `yaml:"kind"`
	Mandatory   bool       `yaml:"mandatory,omitempty"`
	Allowed     []string   `yaml:"allowed,omitempty"`
	Description string     `yaml:"description,omitempty"`
}

var headerKeywords = []Keyword{
	{
		Name:        KeywordVersion,
		Kind:        types.KindString,
		Mandatory:   true,
		Allowed:     []string{FormatVersion},
		Description: "AOT format version",
	},
	{
		Name:        KeywordAOMode,
		Kind:        types.KindString,
		Mandatory:   true,
		Allowed:     []string{AOModeSCAO, AOModeSLAO, AOModeGLAO, AOModeMOAO, AOModeLTAO, AOModeMCAO},
		Description: "Adaptive optics mode",
	},
	{
		Name:        KeywordTimeSystem,
		Kind:        types.KindString,
		Mandatory:   true,
		Allowed:     []string{TimeSystemUTC},
		Description: "Time system of every timestamp in the file",
	},
	{Name: KeywordDateBeginning, Kind: types.KindString, Description: "Start of the recording (ISO 8601)"},
	{Name: KeywordDateEnd, Kind: types.KindString, Description: "End of the recording (ISO 8601)"},
	{Name: KeywordStrehlRatio, Kind: types.KindFloat, Description: "Estimated Strehl ratio"},
	{Name: KeywordTemporalError, Kind: types.KindFloat, Description: "Estimated temporal error"},
	{Name: KeywordConfig, Kind: types.KindString, Description: "Free-form system configuration"},
}

// HeaderKeywords returns the top-level keywords in declaration order.
func HeaderKeywords() []Keyword {
	out := make([]Keyword, len(headerKeywords))
	for i, k := range headerKeywords {
		k.Allowed = append([]string(nil), k.Allowed...)
		out[i] = k
	}
	return out
}

// IsHeaderKeyword reports whether name is one of the AOT header keywords.
func IsHeaderKeyword(name string) bool {
	for _, k := range headerKeywords {
		if k.Name == name {
			return true
		}
	}
	return false
}

// Header holds the top-level keywords of a document. Keywords outside the
// AOT set are allowed and ignored.
type Header map[string]any

// dateLayouts are the accepted DATE-BEG/DATE-END layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a header timestamp. Timestamps without a zone are UTC.
func ParseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("'%s' is not an ISO 8601 timestamp", v)
	default:
		return time.Time{}, fmt.Errorf("expected a timestamp, got %T", value)
	}
}

// ValidateHeader checks the top-level keywords of a document.
func ValidateHeader(h Header, opts ...Option) error {
	o := NewOptions(opts...)
	c := NewCollector(o.Policy)

	for _, k := range headerKeywords {
		value, present := h[k.Name]
		if !present || value == nil {
			if k.Mandatory {
				if c.Add(ValidationError{
					Kind:       ErrMissingMandatoryValue,
					Field:      k.Name,
					Row:        -1,
					Message:    fmt.Sprintf("header keyword %s is required", k.Name),
					Suggestion: headerSuggestion(k),
				}) {
					return c.Err()
				}
			}
			continue
		}
		if isDateKeyword(k.Name) {
			// checked by validateDates
			continue
		}

		if !k.Kind.Accepts(value) {
			if c.Add(ValidationError{
				Kind:       ErrInvalidHeader,
				Field:      k.Name,
				Row:        -1,
				Value:      value,
				Message:    fmt.Sprintf("header keyword %s must be a %s, got %T", k.Name, k.Kind, value),
				Suggestion: headerSuggestion(k),
			}) {
				return c.Err()
			}
			continue
		}

		if len(k.Allowed) > 0 && !contains(k.Allowed, value) {
			if c.Add(ValidationError{
				Kind:       ErrValueNotAllowed,
				Field:      k.Name,
				Row:        -1,
				Value:      value,
				Message:    fmt.Sprintf("'%v' is not a valid %s", value, k.Name),
				Suggestion: headerSuggestion(k),
			}) {
				return c.Err()
			}
		}
	}

	validateDates(h, c)
	return c.Err()
}

func isDateKeyword(name string) bool {
	return name == KeywordDateBeginning || name == KeywordDateEnd
}

func validateDates(h Header, c *Collector) bool {
	var dates [2]time.Time
	var parsed [2]bool
	for i, name := range []string{KeywordDateBeginning, KeywordDateEnd} {
		value, present := h[name]
		if !present || value == nil {
			continue
		}
		t, err := ParseDate(value)
		if err != nil {
			if c.Add(ValidationError{
				Kind:       ErrInvalidHeader,
				Field:      name,
				Row:        -1,
				Value:      value,
				Message:    err.Error(),
				Suggestion: "use a timestamp like '2023-04-01T10:15:30.250'",
			}) {
				return true
			}
			continue
		}
		dates[i], parsed[i] = t, true
	}

	if parsed[0] && parsed[1] && dates[1].Before(dates[0]) {
		return c.Add(ValidationError{
			Kind:    ErrInvalidHeader,
			Field:   KeywordDateEnd,
			Row:     -1,
			Value:   h[KeywordDateEnd],
			Message: fmt.Sprintf("%s is before %s", KeywordDateEnd, KeywordDateBeginning),
		})
	}
	return false
}

func headerSuggestion(k Keyword) string {
	switch {
	case len(k.Allowed) == 1:
		return fmt.Sprintf("set %s: '%s'", k.Name, k.Allowed[0])
	case len(k.Allowed) > 1:
		return fmt.Sprintf("use one of: %v", k.Allowed)
	case k.Kind == types.KindString:
		return "quote the value"
	default:
		return ""
	}
}

func contains(values []string, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
