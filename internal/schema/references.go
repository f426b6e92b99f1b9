package schema

import (
	"sort"
	"strings"

	"github.com/aotfits/aot/internal/types"
)

// FieldUID is the identity field every table carries.
const FieldUID = "UID"

// FieldType is the discriminator field of tables that have secondary tables.
const FieldType = "TYPE"

// ReferenceSuffix ends the name of every field that holds the UID of a row
// in another table.
const ReferenceSuffix = "_UID"

// Reference fields shared across tables.
const (
	TimeReference                 = "TIME_UID"
	GeometryReference             = "GEOMETRY_UID"
	AberrationReference           = "ABERRATION_UID"
	LaserLaunchTelescopeReference = "LLT_UID"
	DetectorReference             = "DETECTOR_UID"
	SourceReference               = "SOURCE_UID"
	NCPAReference                 = "NCPA_UID"
	TelescopeReference            = "TELESCOPE_UID"
	LoopsCommandedReference       = "COMMANDED_UID"
	LoopsControlInputSensor       = "INPUT_SENSOR_UID"
	LoopsOffloadInputCorrector    = "INPUT_CORRECTOR_UID"
)

// referenceTargets is the system-wide vocabulary of reference fields.
var referenceTargets = map[string]TableID{
	TimeReference:                 TimeTable,
	GeometryReference:             GeometryTable,
	AberrationReference:           AberrationsTable,
	LaserLaunchTelescopeReference: TelescopesTable,
	DetectorReference:             DetectorsTable,
	SourceReference:               SourcesTable,
	NCPAReference:                 AberrationsTable,
	TelescopeReference:            TelescopesTable,
	LoopsCommandedReference:       WavefrontCorrectorsTable,
	LoopsControlInputSensor:       WavefrontSensorsTable,
	LoopsOffloadInputCorrector:    WavefrontCorrectorsTable,
}

// IsReferenceName reports whether a field name follows the reference naming
// convention. UID itself is the identity field, not a reference.
func IsReferenceName(name string) bool {
	return strings.HasSuffix(name, ReferenceSuffix)
}

// ReferenceTarget returns the table a reference field name points to.
func ReferenceTarget(name string) (TableID, bool) {
	id, ok := referenceTargets[name]
	return id, ok
}

// ReferenceNames returns the reference vocabulary sorted by name.
func ReferenceNames() []string {
	names := make([]string, 0, len(referenceTargets))
	for name := range referenceTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ref builds a reference field. Reference fields are always dimensionless strings.
func ref(name string, mandatory bool, description string) Field {
	return Field{
		Name:        name,
		Kind:        types.KindString,
		Unit:        UnitDimensionless,
		Mandatory:   mandatory,
		Description: description,
		References:  referenceTargets[name],
	}
}
