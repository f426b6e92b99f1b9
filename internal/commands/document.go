package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aotfits/aot/internal/config"
	"github.com/aotfits/aot/internal/document"
	"github.com/aotfits/aot/internal/logger"
	"github.com/aotfits/aot/internal/output"
	"github.com/aotfits/aot/internal/schema"
)

// ValidateCmd checks a YAML document against the schema
func ValidateCmd() *cobra.Command {
	var policyName string

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a YAML AOT document",
		Long: `Parses a YAML rendition of an AOT file and validates it: mandatory
tables, header keywords, field kinds and values, references between tables
and secondary table subtypes.

By default validation stops at the first violation. Use --policy collect-all
(or validation.policy in .aot.yml) to report every violation.

Examples:
  aot validate run42.yml
  aot validate --policy collect-all run42.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}

			policy := s.cfg.Policy
			if policyName != "" {
				if policy, err = schema.ParsePolicy(policyName); err != nil {
					return err
				}
			}

			path := args[0]
			s.out.Verbose(fmt.Sprintf("Validating %s (%s)", path, policy))

			doc, err := document.Parse(path)
			if err == nil {
				pipeline := document.NewPipeline(s.log.WithFields(logger.F("file", path)))
				err = pipeline.Run(doc, schema.WithPolicy(policy))
			}
			if err != nil {
				violations := schema.AsValidationErrors(err)
				if violations == nil {
					return err
				}
				reportViolations(s.out, violations)
				return fmt.Errorf("%s is not a valid AOT document", path)
			}

			s.out.Success(fmt.Sprintf("%s is valid (%d tables)", path, len(doc.Tables)))
			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "", "Validation policy: fail-fast or collect-all (default from config)")

	return cmd
}

func reportViolations(out *output.Printer, violations schema.ValidationErrors) {
	noun := "violations"
	if len(violations) == 1 {
		noun = "violation"
	}
	out.Warn(fmt.Sprintf("%d %s", len(violations), noun))
	for i := range violations {
		out.Step(violations[i].Error())
	}
}

// LayoutCmd prints the column layout an encoder would write for a document
func LayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout FILE",
		Short: "Show the binary table layout of a YAML AOT document",
		Long: `Lists the tables of a document in canonical order with the type code
each column would be written with. The document is not validated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}

			doc, err := document.Parse(args[0])
			if err != nil {
				return err
			}
			layouts, err := document.Layout(doc)
			if err != nil {
				return err
			}

			if s.cfg.Format == config.FormatYAML {
				return writeYAML(s.out.Writer(), layouts)
			}

			for _, layout := range layouts {
				s.out.Info(fmt.Sprintf("%s (%d rows)", layout.Table, layout.Rows))
				rows := make([][]string, len(layout.Columns))
				for i, c := range layout.Columns {
					rows[i] = []string{strconv.Itoa(i + 1), c.Name, c.Format, c.Kind.String(), string(c.Unit)}
				}
				s.out.Table([]string{"#", "COLUMN", "FORMAT", "KIND", "UNIT"}, rows, 0)
			}
			return nil
		},
	}
}
