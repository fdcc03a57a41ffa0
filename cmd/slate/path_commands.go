package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"slate/internal/templates"
)

func newPathCommand(ctx *commandContext) *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Build, parse, and validate paths against templates",
	}

	pathCmd.AddCommand(newPathBuildCommand(ctx))
	pathCmd.AddCommand(newPathParseCommand(ctx))
	pathCmd.AddCommand(newPathValidateCommand(ctx))

	return pathCmd
}

func newPathBuildCommand(ctx *commandContext) *cobra.Command {
	var fieldFlags []string
	var platform string

	cmd := &cobra.Command{
		Use:   "build <template>",
		Short: "Render a path from a template and field values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := ctx.ensureTemplates()
			if err != nil {
				return err
			}
			tmpl, err := set.PathTemplate(args[0])
			if err != nil {
				return err
			}
			fields, err := parseFieldFlags(tmpl, fieldFlags)
			if err != nil {
				return err
			}
			if platform != "" {
				normalized, err := templates.NormalizePlatform(platform)
				if err != nil {
					return err
				}
				platform = normalized
			}

			rendered, err := tmpl.ApplyFields(fields, platform)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Field value as key=value (repeatable)")
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Target platform (linux, mac, windows)")
	return cmd
}

func newPathParseCommand(ctx *commandContext) *cobra.Command {
	var templateName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <path>",
		Short: "Extract field values from a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := ctx.ensureTemplates()
			if err != nil {
				return err
			}

			var tmpl *templates.Template
			if templateName != "" {
				tmpl, err = set.PathTemplate(templateName)
			} else {
				tmpl, err = set.TemplateFromPath(args[0])
			}
			if err != nil {
				return err
			}

			fields, err := tmpl.Fields(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"template": tmpl.Name(),
					"fields":   fields,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Template: %s\n", tmpl.Name())
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, fmt.Sprint(fields[name])})
			}
			fmt.Fprintln(out, renderRows(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template to parse against (default: detect)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newPathValidateCommand(ctx *commandContext) *cobra.Command {
	var fieldFlags []string

	cmd := &cobra.Command{
		Use:   "validate <template> <path>",
		Short: "Check whether a path matches a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := ctx.ensureTemplates()
			if err != nil {
				return err
			}
			tmpl, err := set.PathTemplate(args[0])
			if err != nil {
				return err
			}
			known, err := parseFieldFlags(tmpl, fieldFlags)
			if err != nil {
				return err
			}

			if !tmpl.Matches(args[1], known, nil) {
				return fmt.Errorf("path does not match template %q", tmpl.Name())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Path matches template %q\n", tmpl.Name())
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Known field value as key=value (repeatable)")
	return cmd
}

// parseFieldFlags turns repeated key=value flags into a typed field
// mapping using the template's own keys for conversion.
func parseFieldFlags(tmpl *templates.Template, flags []string) (map[string]any, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	keys := tmpl.Keys()
	fields := make(map[string]any, len(flags))
	for _, flag := range flags {
		name, raw, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("malformed field %q, expected key=value", flag)
		}
		name = strings.TrimSpace(name)
		key, exists := keys[name]
		if !exists {
			return nil, fmt.Errorf("template %q has no key %q", tmpl.Name(), name)
		}
		value, err := key.ValueFromString(raw)
		if err != nil {
			return nil, err
		}
		fields[name] = value
	}
	return fields, nil
}
