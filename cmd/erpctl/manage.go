package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/charlesng35/dairyadmin/internal/console"
	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
)

func (c *cli) roleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles",
	}

	var (
		payload  client.RolePayload
		inactive bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := !inactive
			payload.Status = &status

			var role *client.Role
			err := c.guard.Run("role.create", func() error {
				return c.store.Mutate(cmd.Context(), invalidation.RoleCreate, func(ctx context.Context) error {
					var err error
					role, err = c.client.CreateRole(ctx, payload)
					return err
				})
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Role %q created (id %d)\n", role.Name, role.ID)
			return nil
		},
	}
	create.Flags().StringVar(&payload.Name, "name", "", "Role name")
	create.Flags().UintVar(&payload.CategoryID, "category-id", 0, "Category id")
	create.Flags().BoolVar(&inactive, "inactive", false, "Create the role as inactive")

	cmd.AddCommand(create)
	return cmd
}

func (c *cli) hierarchyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Manage approval hierarchies",
	}

	var (
		roles []uint
		level string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an approval hierarchy from roles in level order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count := len(roles)
			if level != "" {
				var err error
				if count, err = hierarchy.ParseLevelCount(level); err != nil {
					return err
				}
			}
			created, err := console.NewHierarchyEditor(c.client, c.store, c.guard).Add(cmd.Context(), count, roles)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Hierarchy %d created with %d levels\n", created.ID, created.Level)
			return nil
		},
	}
	add.Flags().UintSliceVar(&roles, "roles", nil, "Approval role ids, level 1 first")
	add.Flags().StringVar(&level, "level", "", "Level count (defaults to the number of roles)")

	var editRoles []uint
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the levels of a hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid hierarchy id %q", args[0])
			}
			updated, err := console.NewHierarchyEditor(c.client, c.store, c.guard).
				Edit(cmd.Context(), uint(id), hierarchy.Build(editRoles))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Hierarchy %d updated with %d levels\n", updated.ID, updated.Level)
			return nil
		},
	}
	edit.Flags().UintSliceVar(&editRoles, "roles", nil, "Approval role ids, level 1 first")

	table := &cobra.Command{
		Use:   "table",
		Short: "Show hierarchies with one column per level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.client.ListHierarchies(cmd.Context(), client.ListQuery{Page: 1, Limit: 100})
			if err != nil {
				return err
			}
			view := console.HierarchyTable(page.Items, nil)
			if c.output == "json" {
				return writeJSON(c.out, view)
			}

			headers := []string{"id"}
			for _, col := range view.Columns {
				headers = append(headers, col.Title)
			}
			headers = append(headers, "status")
			rows := make([][]string, len(view.Rows))
			for i, row := range view.Rows {
				cells := append([]string{strconv.FormatUint(uint64(row.ID), 10)}, row.Cells...)
				rows[i] = append(cells, row.Status.Label)
			}
			return writeTable(c.out, headers, rows)
		},
	}

	cmd.AddCommand(add, edit, table)
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show entity totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := c.client.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(c.out, summary)
			}
			rows := make([][]string, len(summary.Entities))
			for i, e := range summary.Entities {
				rows[i] = []string{
					e.Entity,
					strconv.FormatInt(e.Total, 10),
					strconv.FormatInt(e.Active, 10),
					strconv.FormatInt(e.Inactive, 10),
				}
			}
			return writeTable(c.out, []string{"entity", "total", "active", "inactive"}, rows)
		},
	}
}
