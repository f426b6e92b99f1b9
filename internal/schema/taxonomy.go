package schema

// canonicalOrder is the serialization order of tables in a file. It is
// independent of the mandatory/secondary partition: each secondary table
// follows its parent.
var canonicalOrder = []TableID{
	TimeTable,
	GeometryTable,
	AtmosphericParametersTable,
	AberrationsTable,
	TelescopesTable,
	SourcesTable,
	SourcesSodiumLGSTable,
	SourcesRayleighLGSTable,
	DetectorsTable,
	ScoringCamerasTable,
	WavefrontSensorsTable,
	WavefrontSensorsShackHartmannTable,
	WavefrontSensorsPyramidTable,
	WavefrontCorrectorsTable,
	WavefrontCorrectorsDMTable,
	LoopsTable,
	LoopsControlTable,
	LoopsOffloadTable,
}

// mandatoryTables must be present in every valid file.
var mandatoryTables = []TableID{
	TimeTable,
	GeometryTable,
	AtmosphericParametersTable,
	AberrationsTable,
	TelescopesTable,
	SourcesTable,
	DetectorsTable,
	ScoringCamerasTable,
	WavefrontSensorsTable,
	WavefrontCorrectorsTable,
	LoopsTable,
}

// Subtype couples a secondary table to its parent: a parent row whose TYPE
// equals ParentType is extended by a row of Table with the same UID.
type Subtype struct {
	Table      TableID `yaml:"table"`
	Parent     TableID `yaml:"parent"`
	ParentType string  `yaml:"parent_type"`
}

// subtypes lists every secondary table. Parents are mandatory tables.
var subtypes = []Subtype{
	{Table: SourcesSodiumLGSTable, Parent: SourcesTable, ParentType: SourceTypeSodiumLaserGuideStar},
	{Table: SourcesRayleighLGSTable, Parent: SourcesTable, ParentType: SourceTypeRayleighLaserGuideStar},
	{Table: WavefrontSensorsShackHartmannTable, Parent: WavefrontSensorsTable, ParentType: WavefrontSensorTypeShackHartmann},
	{Table: WavefrontSensorsPyramidTable, Parent: WavefrontSensorsTable, ParentType: WavefrontSensorTypePyramid},
	{Table: WavefrontCorrectorsDMTable, Parent: WavefrontCorrectorsTable, ParentType: WavefrontCorrectorTypeDM},
	{Table: LoopsControlTable, Parent: LoopsTable, ParentType: LoopTypeControl},
	{Table: LoopsOffloadTable, Parent: LoopsTable, ParentType: LoopTypeOffload},
}
