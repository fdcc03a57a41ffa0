package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the template definitions",
	}

	templatesCmd.AddCommand(newTemplatesListCommand(ctx))
	templatesCmd.AddCommand(newTemplatesShowCommand(ctx))
	templatesCmd.AddCommand(newTemplatesCheckCommand(ctx))

	return templatesCmd
}

func newTemplatesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List path and string templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := ctx.ensureTemplates()
			if err != nil {
				return err
			}

			type entry struct {
				Name       string `json:"name"`
				Kind       string `json:"kind"`
				Root       string `json:"root,omitempty"`
				Definition string `json:"definition"`
			}
			var entries []entry
			for _, tmpl := range set.PathTemplates() {
				entries = append(entries, entry{tmpl.Name(), "path", tmpl.RootName(), tmpl.Definition()})
			}
			for _, tmpl := range set.StringTemplates() {
				entries = append(entries, entry{tmpl.Name(), "string", "", tmpl.Definition()})
			}

			if asJSON {
				return writeJSON(cmd, entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Name, e.Kind, e.Root, e.Definition})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRows(
				[]string{"Name", "Kind", "Root", "Definition"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newTemplatesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <template>",
		Short: "Show a template's definition and keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := ctx.ensureTemplates()
			if err != nil {
				return err
			}
			tmpl, ok := set.Template(args[0])
			if !ok {
				return fmt.Errorf("unknown template %q", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", tmpl.Name())
			fmt.Fprintf(out, "Definition: %s\n", tmpl.Definition())
			if tmpl.IsPath() {
				fmt.Fprintf(out, "Root:       %s\n", tmpl.RootName())
				roots := tmpl.Roots()
				platforms := make([]string, 0, len(roots))
				for platform := range roots {
					platforms = append(platforms, platform)
				}
				sort.Strings(platforms)
				for _, platform := range platforms {
					fmt.Fprintf(out, "  %-8s %s\n", platform, roots[platform])
				}
			}

			keys := tmpl.Keys()
			rows := make([][]string, 0, len(keys))
			for _, name := range tmpl.KeyNames() {
				key := keys[name]
				defaultText := ""
				if key.HasDefault() {
					defaultText = fmt.Sprint(key.Default())
				}
				choices := key.Choices()
				choiceText := make([]string, 0, len(choices))
				for _, choice := range choices {
					choiceText = append(choiceText, fmt.Sprint(choice))
				}
				binding := ""
				if key.EntityType() != "" && key.FieldName() != "" {
					binding = key.EntityType() + "." + key.FieldName()
				}
				rows = append(rows, []string{
					name,
					string(key.Type()),
					defaultText,
					strings.Join(choiceText, ", "),
					binding,
				})
			}
			fmt.Fprintln(out, renderRows(
				[]string{"Key", "Type", "Default", "Choices", "Tracker Field"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newTemplatesCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the template definitions file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := ctx.ensureTemplates()
			if err != nil {
				return fmt.Errorf("definitions invalid: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Definitions file: %s\n", cfg.Paths.TemplatesFile)
			fmt.Fprintf(out, "Keys: %d  Path templates: %d  String templates: %d\n",
				len(set.Keys()), len(set.PathTemplates()), len(set.StringTemplates()))
			fmt.Fprintln(out, "Definitions valid")
			return nil
		},
	}
}
