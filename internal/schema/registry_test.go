package schema

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aotfits/aot/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCheck(t *testing.T) {
	require.NoError(t, Default().Check())
}

func TestEveryTableHasOneMandatoryUniqueUID(t *testing.T) {
	r := Default()
	for _, id := range AllTables() {
		t.Run(id.String(), func(t *testing.T) {
			s, err := r.Lookup(id)
			require.NoError(t, err)

			count := 0
			for _, f := range s.Fields() {
				if f.Name == FieldUID {
					count++
					assert.True(t, f.Mandatory)
					assert.True(t, f.Unique)
					assert.Equal(t, types.KindString, f.Kind)
				}
			}
			assert.Equal(t, 1, count)
			assert.Equal(t, FieldUID, s.Names()[0], "UID is the first column")
		})
	}
}

func TestCanonicalOrder(t *testing.T) {
	r := Default()
	order := r.CanonicalOrder()

	require.Len(t, order, 18)
	seen := make(map[TableID]bool)
	for _, id := range order {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	for _, id := range AllTables() {
		assert.True(t, seen[id], "missing %s", id)
	}

	assert.Equal(t, TimeTable, order[0])
	assert.Equal(t, LoopsOffloadTable, order[17])
	assert.Equal(t, order, r.CanonicalOrder(), "stable across calls")

	// callers get a copy
	order[0] = LoopsTable
	assert.Equal(t, TimeTable, r.CanonicalOrder()[0])
}

func TestCanonicalOrderNames(t *testing.T) {
	want := []string{
		"AOT_TIME", "AOT_GEOMETRY", "AOT_ATMOSPHERIC_PARAMETERS", "AOT_ABERRATIONS", "AOT_TELESCOPES",
		"AOT_SOURCES", "AOT_SOURCES_SODIUM_LGS", "AOT_SOURCES_RAYLEIGH_LGS", "AOT_DETECTORS",
		"AOT_SCORING_CAMERAS", "AOT_WAVEFRONT_SENSORS", "AOT_WAVEFRONT_SENSORS_SHACK_HARTMANN",
		"AOT_WAVEFRONT_SENSORS_PYRAMID", "AOT_WAVEFRONT_CORRECTORS", "AOT_WAVEFRONT_CORRECTORS_DM",
		"AOT_LOOPS", "AOT_LOOPS_CONTROL", "AOT_LOOPS_OFFLOAD",
	}
	var got []string
	for _, id := range Default().CanonicalOrder() {
		got = append(got, id.String())
	}
	assert.Equal(t, want, got)
}

func TestMandatorySecondaryPartition(t *testing.T) {
	r := Default()
	required := r.RequiredTables()
	secondary := r.SecondaryTables()

	assert.Len(t, required, 11)
	assert.Len(t, secondary, 7)

	union := make(map[TableID]int)
	for _, id := range required {
		union[id]++
		assert.True(t, r.IsMandatoryTable(id))
		assert.False(t, r.IsSecondaryTable(id))
	}
	for _, id := range secondary {
		union[id]++
		assert.True(t, r.IsSecondaryTable(id))
		assert.False(t, r.IsMandatoryTable(id))
	}
	for _, id := range AllTables() {
		assert.Equal(t, 1, union[id], "%s must be in exactly one partition", id)
	}

	assert.False(t, r.IsMandatoryTable(NoTable))
	assert.False(t, r.IsSecondaryTable(NoTable))
}

func TestParentsAndChildren(t *testing.T) {
	r := Default()

	parent, ok := r.Parent(SourcesSodiumLGSTable)
	require.True(t, ok)
	assert.Equal(t, SourcesTable, parent)

	_, ok = r.Parent(SourcesTable)
	assert.False(t, ok)

	assert.Equal(t, []TableID{SourcesSodiumLGSTable, SourcesRayleighLGSTable}, r.Children(SourcesTable))
	assert.Equal(t, []TableID{LoopsControlTable, LoopsOffloadTable}, r.Children(LoopsTable))
	assert.Empty(t, r.Children(TimeTable))

	for _, id := range r.SecondaryTables() {
		p, ok := r.Parent(id)
		require.True(t, ok)
		assert.True(t, r.IsMandatoryTable(p))

		uid, err := r.Field(id, FieldUID)
		require.NoError(t, err)
		assert.Equal(t, p, uid.References, "%s UID extends its parent", id)
	}
}

func TestLookup(t *testing.T) {
	r := Default()

	s, err := r.Lookup(TimeTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"UID", "TIMESTAMPS", "FRAME_NUMBERS"}, s.Names())

	_, err = r.Lookup(NoTable)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = r.Lookup(TableID(99))
	assert.ErrorIs(t, err, ErrUnknownTable)

	s, err = r.LookupName("AOT_GEOMETRY")
	require.NoError(t, err)
	assert.Equal(t, GeometryTable, s.ID())

	_, err = r.LookupName("AOT_NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Contains(t, err.Error(), "AOT_NOPE")
}

func TestField(t *testing.T) {
	r := Default()

	f, err := r.Field(DetectorsTable, "READOUT_NOISE")
	require.NoError(t, err)
	assert.Equal(t, types.KindFloat, f.Kind)
	assert.Equal(t, Unit("electron*s^-1*pix^-1"), f.Unit)
	assert.False(t, f.Mandatory)

	f, err = r.Field(WavefrontSensorsTable, SourceReference)
	require.NoError(t, err)
	assert.True(t, f.Mandatory)
	assert.Equal(t, SourcesTable, f.References)

	_, err = r.Field(TimeTable, "NOT_A_FIELD")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = r.Field(NoTable, "UID")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestFieldsAreCopies(t *testing.T) {
	r := Default()
	s, err := r.Lookup(SourcesTable)
	require.NoError(t, err)

	fields := s.Fields()
	fields[1].Allowed[0] = "Mutated"
	fields[1].Mandatory = false

	f, err := s.Field(FieldType)
	require.NoError(t, err)
	assert.Equal(t, SourceTypeScienceStar, f.Allowed[0])
	assert.True(t, f.Mandatory)
}

func TestReferenceFields(t *testing.T) {
	r := Default()
	for _, id := range AllTables() {
		s, err := r.Lookup(id)
		require.NoError(t, err)
		for _, f := range s.Fields() {
			if f.Name == FieldUID {
				continue
			}
			assert.Equal(t, IsReferenceName(f.Name), f.IsReference(), "%s.%s", id, f.Name)
			if f.IsReference() {
				assert.Equal(t, UnitDimensionless, f.Unit, "%s.%s", id, f.Name)
				assert.Equal(t, types.KindString, f.Kind, "%s.%s", id, f.Name)
				target, ok := ReferenceTarget(f.Name)
				require.True(t, ok)
				assert.Equal(t, target, f.References)
			}
		}
	}

	names := ReferenceNames()
	assert.Len(t, names, 11)
	for _, n := range names {
		assert.True(t, strings.HasSuffix(n, ReferenceSuffix))
	}
}

func TestCheckDetectsBrokenRegistries(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(defs map[TableID][]Field) ([]TableID, []TableID)
		wantMsg string
	}{
		{
			name: "missing UID",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				defs[TimeTable] = defs[TimeTable][1:]
				return canonicalOrder, mandatoryTables
			},
			wantMsg: "exactly one UID",
		},
		{
			name: "duplicate field",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				defs[TimeTable] = append(defs[TimeTable], list("TIMESTAMPS", UnitSeconds))
				return canonicalOrder, mandatoryTables
			},
			wantMsg: "duplicate field name",
		},
		{
			name: "bad unit",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				defs[TimeTable] = append(defs[TimeTable], list("EXTRA", Unit("furlong")))
				return canonicalOrder, mandatoryTables
			},
			wantMsg: "unit vocabulary",
		},
		{
			name: "order omits a table",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				return canonicalOrder[1:], mandatoryTables
			},
			wantMsg: "missing from canonical order",
		},
		{
			name: "order repeats a table",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				order := append([]TableID{TimeTable}, canonicalOrder...)
				return order, mandatoryTables
			},
			wantMsg: "appears twice",
		},
		{
			name: "secondary marked mandatory",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				return canonicalOrder, append(append([]TableID(nil), mandatoryTables...), LoopsControlTable)
			},
			wantMsg: "cannot extend",
		},
		{
			name: "reference without suffix",
			mutate: func(defs map[TableID][]Field) ([]TableID, []TableID) {
				f := str("TIME")
				f.References = TimeTable
				defs[GeometryTable] = append(defs[GeometryTable], f)
				return canonicalOrder, mandatoryTables
			},
			wantMsg: "disagree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := definitions()
			order, mandatory := tt.mutate(defs)
			r := build(defs, order, mandatory, subtypes)

			err := r.Check()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDefaultIsBuiltOnce(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Registry, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Default()
		}(i)
	}
	wg.Wait()

	for _, r := range got {
		assert.Same(t, got[0], r)
	}
}

func TestConcurrentLookupsAndValidation(t *testing.T) {
	rows := []Row{{"UID": "T1", "TIMESTAMPS": []any{0.0, 0.1}, "FRAME_NUMBERS": []any{0, 1}}}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Default().Field(GeometryTable, TimeReference); err != nil {
				errs <- err
				return
			}
			errs <- ValidateTable(TimeTable, rows)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestParseTableID(t *testing.T) {
	for _, id := range AllTables() {
		parsed, err := ParseTableID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}

	_, err := ParseTableID("")
	assert.True(t, errors.Is(err, ErrUnknownTable))
	assert.Equal(t, "TableID(0)", NoTable.String())
}

func TestUnits(t *testing.T) {
	tests := []struct {
		unit Unit
		want bool
	}{
		{UnitDimensionless, true},
		{UnitArcsec, true},
		{"electron*s^-1*pix^-1", true},
		{Mul(UnitRadians, Inv(UnitPixels)), true},
		{"", false},
		{"furlong", false},
		{"m^2", false},
		{"1*m", false},
		{"m*", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.unit.Valid())
		})
	}

	assert.Equal(t, Unit("pix*s^-1"), Mul(UnitPixels, Inv(UnitSeconds)))
}
