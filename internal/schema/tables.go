package schema

import "fmt"

// TableID identifies one of the AOT binary tables.
// The zero value, NoTable, identifies no table.
type TableID int

const (
	NoTable TableID = iota
	TimeTable
	GeometryTable
	AtmosphericParametersTable
	AberrationsTable
	TelescopesTable
	SourcesTable
	SourcesSodiumLGSTable
	SourcesRayleighLGSTable
	DetectorsTable
	ScoringCamerasTable
	WavefrontSensorsTable
	WavefrontSensorsShackHartmannTable
	WavefrontSensorsPyramidTable
	WavefrontCorrectorsTable
	WavefrontCorrectorsDMTable
	LoopsTable
	LoopsControlTable
	LoopsOffloadTable

	tableCount = int(LoopsOffloadTable)
)

// tableNames are the extension names written to disk. They must never change
// without a format version bump.
var tableNames = [tableCount + 1]string{
	NoTable:                            "",
	TimeTable:                          "AOT_TIME",
	GeometryTable:                      "AOT_GEOMETRY",
	AtmosphericParametersTable:         "AOT_ATMOSPHERIC_PARAMETERS",
	AberrationsTable:                   "AOT_ABERRATIONS",
	TelescopesTable:                    "AOT_TELESCOPES",
	SourcesTable:                       "AOT_SOURCES",
	SourcesSodiumLGSTable:              "AOT_SOURCES_SODIUM_LGS",
	SourcesRayleighLGSTable:            "AOT_SOURCES_RAYLEIGH_LGS",
	DetectorsTable:                     "AOT_DETECTORS",
	ScoringCamerasTable:                "AOT_SCORING_CAMERAS",
	WavefrontSensorsTable:              "AOT_WAVEFRONT_SENSORS",
	WavefrontSensorsShackHartmannTable: "AOT_WAVEFRONT_SENSORS_SHACK_HARTMANN",
	WavefrontSensorsPyramidTable:       "AOT_WAVEFRONT_SENSORS_PYRAMID",
	WavefrontCorrectorsTable:           "AOT_WAVEFRONT_CORRECTORS",
	WavefrontCorrectorsDMTable:         "AOT_WAVEFRONT_CORRECTORS_DM",
	LoopsTable:                         "AOT_LOOPS",
	LoopsControlTable:                  "AOT_LOOPS_CONTROL",
	LoopsOffloadTable:                  "AOT_LOOPS_OFFLOAD",
}

// AllTables returns every table identifier in declaration order.
func AllTables() []TableID {
	ids := make([]TableID, 0, tableCount)
	for id := TimeTable; id <= LoopsOffloadTable; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Valid reports whether id names a registered table.
func (id TableID) Valid() bool {
	return id > NoTable && int(id) <= tableCount
}

// String returns the on-disk table name
func (id TableID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("TableID(%d)", int(id))
	}
	return tableNames[id]
}

// ParseTableID converts an on-disk table name to its identifier.
func ParseTableID(name string) (TableID, error) {
	for id := TimeTable; id <= LoopsOffloadTable; id++ {
		if tableNames[id] == name {
			return id, nil
		}
	}
	return NoTable, &ValidationError{
		Kind:       ErrUnknownTable,
		Table:      name,
		Row:        -1,
		Message:    fmt.Sprintf("'%s' is not a registered table", name),
		Suggestion: "table names look like 'AOT_TIME' or 'AOT_SOURCES'",
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id TableID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid table id %d", int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *TableID) UnmarshalText(text []byte) error {
	parsed, err := ParseTableID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
