package schema

import (
	"testing"

	"github.com/aotfits/aot/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldFlags(t *testing.T) {
	assert.Equal(t, "mandatory,unique", uid().Flags())
	assert.Equal(t, "mandatory", str(FieldType, mandatory).Flags())
	assert.Empty(t, flt("R0", UnitMeters).Flags())
}

func TestFieldSummary(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{
			name:  "plain",
			field: flt("R0", UnitMeters, describe("Fried parameter")),
			want:  "Fried parameter",
		},
		{
			name:  "reference",
			field: extends(LoopsTable),
			want:  "-> AOT_LOOPS. UID of the AOT_LOOPS row this row extends",
		},
		{
			name:  "vocabulary",
			field: str("STATUS", oneOf(LoopStatusOpen, LoopStatusClosed)),
			want:  "One of " + LoopStatusOpen + ", " + LoopStatusClosed + ".",
		},
		{
			name:  "empty",
			field: col("X", types.KindInteger, UnitCount),
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Summary())
		})
	}
}

func TestFieldSummaryOfRegisteredReference(t *testing.T) {
	f, err := Default().Field(GeometryTable, "TIME_UID")
	require.NoError(t, err)
	assert.Contains(t, f.Summary(), "-> AOT_TIME.")
}
