package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"slate/internal/pathcache"
	"slate/internal/production"
	"slate/internal/tracker"
)

func newContextCommand(ctx *commandContext) *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Reconstruct and resolve production contexts",
	}

	contextCmd.AddCommand(newContextFromPathCommand(ctx))
	contextCmd.AddCommand(newContextFieldsCommand(ctx))

	return contextCmd
}

func newContextFromPathCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "from-path <path>",
		Short: "Reconstruct a context from a filesystem path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withCache(func(store *pathcache.Store) error {
				c, err := production.FromPath(cmd.Context(), store, cfg.ProjectRoots(), args[0], nil)
				if err != nil {
					return err
				}
				if c.IsEmpty() {
					return fmt.Errorf("no cached entities along %s", args[0])
				}

				if asJSON {
					return writeJSON(cmd, contextView(c))
				}
				printContext(cmd, c)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newContextFieldsCommand(ctx *commandContext) *cobra.Command {
	var fromPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fields <template>",
		Short: "Resolve a context into template field values",
		Long: "Reconstructs a context from a cached path, then resolves the named " +
			"template's fields from the path cache. Keys bound to tracker fields " +
			"require a tracker connection and are reported as errors here.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromPath == "" {
				return fmt.Errorf("--from-path is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := ctx.ensureTemplates()
			if err != nil {
				return err
			}
			tmpl, err := set.PathTemplate(args[0])
			if err != nil {
				return err
			}

			return ctx.withCache(func(store *pathcache.Store) error {
				c, err := production.FromPath(cmd.Context(), store, cfg.ProjectRoots(), fromPath, nil)
				if err != nil {
					return err
				}

				resolver := production.NewResolver(store, offlineTracker{}, production.Options{
					Hook:         production.HookForPolicy(cfg.Studio.NamePolicy),
					ProjectRoots: cfg.ProjectRoots(),
					Logger:       ctx.ensureLogger(),
				})
				fields, err := resolver.AsTemplateFields(cmd.Context(), c, tmpl)
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, fields)
				}
				names := make([]string, 0, len(fields))
				for name := range fields {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					value := "(ambiguous)"
					if fields[name] != nil {
						value = fmt.Sprint(fields[name])
					}
					rows = append(rows, []string{name, value})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRows(
					[]string{"Field", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&fromPath, "from-path", "", "Path the context is reconstructed from")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

// offlineTracker stands in when no tracker connection is configured.
// The resolver only consults it for keys bound to tracker fields, so
// cache-only resolutions proceed normally.
type offlineTracker struct{}

func (offlineTracker) FindOne(context.Context, string, []tracker.Filter, []string) (map[string]any, error) {
	return nil, fmt.Errorf("no tracker connection configured")
}

type entityView struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

func contextView(c *production.Context) map[string]any {
	view := make(map[string]any)
	set := func(label string, ref *tracker.EntityRef) {
		if ref != nil {
			view[label] = entityView{ref.Type, ref.ID, ref.Name}
		}
	}
	set("project", c.Project())
	set("entity", c.Entity())
	set("step", c.Step())
	set("task", c.Task())
	set("user", c.User())
	if additional := c.AdditionalEntities(); len(additional) > 0 {
		views := make([]entityView, 0, len(additional))
		for _, ref := range additional {
			views = append(views, entityView{ref.Type, ref.ID, ref.Name})
		}
		view["additional"] = views
	}
	return view
}

func printContext(cmd *cobra.Command, c *production.Context) {
	out := cmd.OutOrStdout()
	write := func(label string, ref *tracker.EntityRef) {
		if ref != nil {
			fmt.Fprintf(out, "%-8s %s\n", label+":", ref)
		}
	}
	write("Project", c.Project())
	write("Entity", c.Entity())
	write("Step", c.Step())
	write("Task", c.Task())
	write("User", c.User())
	for _, ref := range c.AdditionalEntities() {
		fmt.Fprintf(out, "%-8s %s\n", "Extra:", ref)
	}
}
