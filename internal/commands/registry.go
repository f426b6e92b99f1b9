package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aotfits/aot/internal/config"
	"github.com/aotfits/aot/internal/output"
	"github.com/aotfits/aot/internal/schema"
	"github.com/aotfits/aot/internal/types"
)

// tableSummary is one table as listed by `aot tables` and `aot schema`.
type tableSummary struct {
	Name       string         `yaml:"name"`
	Mandatory  bool           `yaml:"mandatory"`
	Parent     string         `yaml:"parent,omitempty"`
	ParentType string         `yaml:"parent_type,omitempty"`
	Fields     []schema.Field `yaml:"fields,omitempty"`
}

func summarize(reg *schema.Registry, id schema.TableID, withFields bool) (tableSummary, error) {
	ts, err := reg.Lookup(id)
	if err != nil {
		return tableSummary{}, err
	}
	sum := tableSummary{Name: id.String(), Mandatory: reg.IsMandatoryTable(id)}
	if sub, ok := reg.Subtype(id); ok {
		sum.Parent = sub.Parent.String()
		sum.ParentType = sub.ParentType
	}
	if withFields {
		sum.Fields = ts.Fields()
	}
	return sum, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// TablesCmd lists the tables in canonical order
func TablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the AOT tables in canonical order",
		Long: `Lists every AOT table in the order a writer emits them.

Mandatory tables must be present in every file. Secondary tables extend a
row of their parent table when the parent's TYPE matches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			reg := schema.Default()

			summaries := make([]tableSummary, 0, len(reg.CanonicalOrder()))
			for _, id := range reg.CanonicalOrder() {
				sum, err := summarize(reg, id, false)
				if err != nil {
					return err
				}
				summaries = append(summaries, sum)
			}

			if s.cfg.Format == config.FormatYAML {
				return writeYAML(s.out.Writer(), summaries)
			}

			rows := make([][]string, len(summaries))
			for i, sum := range summaries {
				role := "secondary"
				if sum.Mandatory {
					role = "mandatory"
				}
				extends := ""
				if sum.Parent != "" {
					extends = fmt.Sprintf("%s (TYPE=%s)", sum.Parent, sum.ParentType)
				}
				rows[i] = []string{strconv.Itoa(i + 1), sum.Name, role, extends}
			}
			s.out.Table([]string{"#", "TABLE", "ROLE", "EXTENDS"}, rows, 0)
			return nil
		},
	}
}

// FieldsCmd describes the columns of one table
func FieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields TABLE",
		Short: "Show the field descriptors of a table",
		Long: `Shows the columns of one AOT table in column order.

Examples:
  aot fields AOT_TIME
  aot fields AOT_LOOPS_CONTROL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}

			ts, err := schema.Default().LookupName(strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			fields := ts.Fields()

			if s.cfg.Format == config.FormatYAML {
				return writeYAML(s.out.Writer(), fields)
			}

			// FIELD, KIND, UNIT and FLAGS take about 80 columns
			descWidth := max(s.out.Width()-80, 24)
			rows := make([][]string, len(fields))
			for i, f := range fields {
				rows[i] = []string{f.Name, f.Kind.String(), string(f.Unit), f.Flags(), output.Truncate(f.Summary(), descWidth)}
			}
			s.out.Table([]string{"FIELD", "KIND", "UNIT", "FLAGS", "DESCRIPTION"}, rows, 0)
			return nil
		},
	}
}

// SchemaCmd dumps the whole registry
func SchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Dump the table schema registry as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			reg := schema.Default()

			dump := struct {
				Version string         `yaml:"version"`
				Tables  []tableSummary `yaml:"tables"`
			}{Version: schema.FormatVersion}

			for _, id := range reg.CanonicalOrder() {
				sum, err := summarize(reg, id, true)
				if err != nil {
					return err
				}
				dump.Tables = append(dump.Tables, sum)
			}

			return writeYAML(s.out.Writer(), dump)
		},
	}
}

// MapTypeCmd maps binary table column codes to field kinds
func MapTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map-type CODE...",
		Short: "Map binary table column codes to field kinds",
		Long: `Maps each column type code to the kind of value it holds.

Examples:
  aot map-type D K 64A QD(1200)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}

			failed := 0
			for _, code := range args {
				kind, err := types.MapWireType(code)
				if err != nil {
					s.out.Error(err.Error())
					failed++
					continue
				}
				s.out.Info(fmt.Sprintf("%-10s %s", code, kind))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d codes not recognized", failed, len(args))
			}
			return nil
		},
	}
}
