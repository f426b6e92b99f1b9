package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aotfits/aot/internal/document"
	"github.com/aotfits/aot/internal/schema"
)

const testdata = "../document/testdata"

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := RootCmd()
	root.AddCommand(TablesCmd(), FieldsCmd(), SchemaCmd(), MapTypeCmd(), ValidateCmd(), LayoutCmd())

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func yamlConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aot.yml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: yaml\n  color: never\n"), 0o644))
	return path
}

func fixture(name string) string {
	return filepath.Join(testdata, name)
}

func TestTablesText(t *testing.T) {
	out, _, err := execute(t, "tables")
	require.NoError(t, err)

	assert.Contains(t, out, "AOT_TIME")
	assert.Contains(t, out, "mandatory")
	assert.Contains(t, out, "secondary")
	assert.Contains(t, out, "AOT_LOOPS (TYPE=Offload Loop)")
	assertBefore(t, out, "AOT_LOOPS_CONTROL", "AOT_LOOPS_OFFLOAD")
	assertBefore(t, out, "AOT_SOURCES_RAYLEIGH_LGS", "AOT_DETECTORS")
}

func TestTablesYAML(t *testing.T) {
	out, _, err := execute(t, "--config", yamlConfig(t), "tables")
	require.NoError(t, err)

	var tables []tableSummary
	require.NoError(t, yaml.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 18)

	mandatory := 0
	for i, tbl := range tables {
		assert.Equal(t, schema.Default().CanonicalOrder()[i].String(), tbl.Name)
		assert.Empty(t, tbl.Fields)
		if tbl.Mandatory {
			mandatory++
			assert.Empty(t, tbl.Parent, tbl.Name)
		} else {
			assert.NotEmpty(t, tbl.Parent, tbl.Name)
		}
	}
	assert.Equal(t, 11, mandatory)
	assert.Equal(t, "AOT_WAVEFRONT_SENSORS", tables[11].Parent)
}

func TestFields(t *testing.T) {
	out, _, err := execute(t, "fields", "aot_time")
	require.NoError(t, err)

	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "TIMESTAMPS")
	assert.Contains(t, out, "mandatory,unique")
	assertBefore(t, out, "UID", "TIMESTAMPS")
}

func TestFieldsShowsReferences(t *testing.T) {
	out, _, err := execute(t, "fields", "AOT_GEOMETRY")
	require.NoError(t, err)
	assert.Contains(t, out, "-> AOT_TIME.")
}

func TestFieldsYAML(t *testing.T) {
	out, _, err := execute(t, "--config", yamlConfig(t), "fields", "AOT_LOOPS_CONTROL")
	require.NoError(t, err)

	var fields []schema.Field
	require.NoError(t, yaml.Unmarshal([]byte(out), &fields))
	ts, err := schema.Default().Lookup(schema.LoopsControlTable)
	require.NoError(t, err)
	assert.Equal(t, ts.Fields(), fields)
}

func TestFieldsUnknownTable(t *testing.T) {
	_, _, err := execute(t, "fields", "AOT_NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownTable)
}

func TestSchemaDump(t *testing.T) {
	out, _, err := execute(t, "schema")
	require.NoError(t, err)

	var dump struct {
		Version string         `yaml:"version"`
		Tables  []tableSummary `yaml:"tables"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &dump))

	assert.Equal(t, schema.FormatVersion, dump.Version)
	require.Len(t, dump.Tables, 18)
	for _, tbl := range dump.Tables {
		require.NotEmpty(t, tbl.Fields, tbl.Name)
		assert.Equal(t, schema.FieldUID, tbl.Fields[0].Name, tbl.Name)
	}
	assert.Equal(t, "Sodium Laser Guide Star", dump.Tables[6].ParentType)
}

func TestMapType(t *testing.T) {
	out, _, err := execute(t, "map-type", "D", "K", "64A", "QD(1200)")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"D          float",
		"K          integer",
		"64A        string",
		"QD(1200)   list",
	}, lines)
}

func TestMapTypeUnrecognized(t *testing.T) {
	out, _, err := execute(t, "map-type", "E", "X")
	require.Error(t, err)

	assert.Equal(t, "1 of 2 codes not recognized", err.Error())
	assert.Contains(t, out, "E          float")
	assert.Contains(t, out, `✗ format not in AOT: "X"`)
}

func TestValidateValidDocument(t *testing.T) {
	out, _, err := execute(t, "validate", fixture("valid.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ")
	assert.Contains(t, out, "is valid (13 tables)")
}

func TestValidateFailFast(t *testing.T) {
	out, _, err := execute(t, "validate", fixture("invalid.yml"))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "is not a valid AOT document")
	assert.Contains(t, out, "! 1 violation\n")
	assert.Contains(t, out, "incomplete document")
}

func TestValidateCollectAll(t *testing.T) {
	out, _, err := execute(t, "validate", "--policy", "collect-all", fixture("invalid.yml"))
	require.Error(t, err)

	assert.Contains(t, out, "! 13 violations\n")
	assert.Contains(t, out, "unresolved reference")
	assert.Contains(t, out, "duplicate unique value")
}

func TestValidateUnknownTables(t *testing.T) {
	out, _, err := execute(t, "validate", fixture("unknown_table.yml"))
	require.Error(t, err)

	assert.Contains(t, out, "! 2 violations\n")
	assert.Contains(t, out, "(line 5)")
	assert.Contains(t, out, "(line 6)")
}

func TestValidateErrors(t *testing.T) {
	_, _, err := execute(t, "validate", "--policy", "sometimes", fixture("valid.yml"))
	assert.Error(t, err)

	_, _, err = execute(t, "validate", fixture("missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document")

	_, _, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestValidateVerbose(t *testing.T) {
	out, stderr, err := execute(t, "--verbose", "validate", fixture("valid.yml"))
	require.NoError(t, err)

	assert.Contains(t, out, "· Validating")
	assert.Contains(t, stderr, "DEBUG configuration loaded")
	assert.Contains(t, stderr, "validator=References")
	assert.Contains(t, stderr, "file="+fixture("valid.yml"))
}

func TestLayoutText(t *testing.T) {
	out, _, err := execute(t, "layout", fixture("valid.yml"))
	require.NoError(t, err)

	assert.Contains(t, out, "AOT_TIME (")
	assert.Contains(t, out, "FORMAT")
	assert.Contains(t, out, "QD(")
	assertBefore(t, out, "AOT_TIME (", "AOT_LOOPS (")
}

func TestLayoutYAML(t *testing.T) {
	out, _, err := execute(t, "--config", yamlConfig(t), "layout", fixture("valid.yml"))
	require.NoError(t, err)

	var layouts []document.TableLayout
	require.NoError(t, yaml.Unmarshal([]byte(out), &layouts))
	require.Len(t, layouts, 13)
	assert.Equal(t, schema.TimeTable, layouts[0].Table)
	assert.Equal(t, schema.FieldUID, layouts[0].Columns[0].Name)
}

func TestConfigFileMustExist(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yml"), "tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func assertBefore(t *testing.T, s, first, second string) {
	t.Helper()
	i, j := strings.Index(s, first), strings.Index(s, second)
	require.GreaterOrEqual(t, i, 0, first)
	require.GreaterOrEqual(t, j, 0, second)
	assert.Less(t, i, j)
}
