package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"slate/internal/pathcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the entity path cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheAddCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheEntityCommand(ctx))
	cacheCmd.AddCommand(newCachePathsCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache contents summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *pathcache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"db_path":  stats.DBPath,
						"mappings": stats.Mappings,
						"entities": stats.Entities,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s\n", stats.DBPath)
				fmt.Fprintf(out, "Mappings: %d\n", stats.Mappings)
				fmt.Fprintf(out, "Entities: %d\n", stats.Entities)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newCacheAddCommand(ctx *commandContext) *cobra.Command {
	var entityType, entityName string
	var entityID int

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Map a path to a tracker entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if entityType == "" || entityID == 0 {
				return fmt.Errorf("--type and --id are required")
			}
			return ctx.withCache(func(store *pathcache.Store) error {
				if err := store.AddMapping(cmd.Context(), entityType, entityID, entityName, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Mapped %s to %s %d\n", args[0], entityType, entityID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&entityType, "type", "", "Entity type (e.g. Shot)")
	cmd.Flags().IntVar(&entityID, "id", 0, "Entity id")
	cmd.Flags().StringVar(&entityName, "name", "", "Entity display name")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a path mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *pathcache.Store) error {
				removed, err := store.RemoveMapping(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no mapping for %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed mapping for %s\n", args[0])
				return nil
			})
		},
	}
}

func newCacheEntityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "entity <path>",
		Short: "Show the entity cached for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store *pathcache.Store) error {
				ref, err := store.GetEntity(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ref == nil {
					return fmt.Errorf("no mapping for %s", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), ref)
				return nil
			})
		},
	}
}

func newCachePathsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "paths <type> <id>",
		Short: "List every path cached for an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("entity id must be an integer, got %q", args[1])
			}
			return ctx.withCache(func(store *pathcache.Store) error {
				paths, err := store.GetPaths(cmd.Context(), args[0], id)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					return fmt.Errorf("no paths cached for %s %d", args[0], id)
				}
				out := cmd.OutOrStdout()
				for _, path := range paths {
					fmt.Fprintln(out, path)
				}
				return nil
			})
		},
	}
}
