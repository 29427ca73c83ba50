package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlesng35/dairyadmin/internal/console"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
)

func listResources() []string {
	out := make([]string, 0, len(resourceColumns))
	for name := range resourceColumns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *cli) listCmd() *cobra.Command {
	var (
		q       client.ListQuery
		filters map[string]string
	)
	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "List a resource page",
		Long:      "List a resource page. Resources: " + strings.Join(listResources(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: listResources(),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := strings.Trim(strings.ToLower(args[0]), "/")
			columns, ok := resourceColumns[resource]
			if !ok {
				return fmt.Errorf("unknown resource %q", args[0])
			}
			q.Filters = filters

			key := invalidation.Key(resource)
			if err := c.store.SetQuery(cmd.Context(), key, q); err != nil {
				return err
			}
			state := c.store.State(key)
			if state.Status == console.StatusError {
				return fmt.Errorf("%s", state.Error)
			}

			if c.output == "json" {
				return writeJSON(c.out, map[string]any{"items": state.Rows, "pagination": state.Pagination})
			}
			rows, err := rawRows(state.Rows, columns)
			if err != nil {
				return err
			}
			if err := writeTable(c.out, columns, rows); err != nil {
				return err
			}
			writePagination(c.out, state.Pagination)
			return nil
		},
	}
	addPageFlags(cmd, &q)
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "Extra query filters, e.g. --filter mcc_code=MCC001")
	return cmd
}

func addPageFlags(cmd *cobra.Command, q *client.ListQuery) {
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 10, "Rows per page")
	cmd.Flags().StringVar(&q.Search, "search", "", "Search term")
	cmd.Flags().StringVar(&q.SortBy, "sort-by", "", "Sort column")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "Sort direction (asc or desc)")
}

func (c *cli) assignmentsCmd() *cobra.Command {
	var (
		q      client.ListQuery
		roleID uint
	)
	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "List section allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := c.client.ListAssignments(cmd.Context(), roleID)
			if err != nil {
				return err
			}
			filtered := console.FilterAssignments(all, q.Search, roleID)
			page, pagination := console.PaginateLocal(filtered, q.Page, q.Limit)

			if c.output == "json" {
				return writeJSON(c.out, map[string]any{"items": page, "pagination": pagination})
			}
			rows := make([][]string, len(page))
			for i, a := range page {
				rows[i] = []string{
					strconv.FormatUint(uint64(a.ID), 10),
					a.UserName,
					a.RoleName,
					strings.Join(a.MCCCodes, ","),
					strings.Join(a.MPPCodes, ","),
					statusLabel(a.Status),
				}
			}
			if err := writeTable(c.out, []string{"id", "user", "role", "mccs", "mpps", "status"}, rows); err != nil {
				return err
			}
			writePagination(c.out, pagination)
			return nil
		},
	}
	addPageFlags(cmd, &q)
	cmd.Flags().UintVar(&roleID, "role-id", 0, "Only allocations of this role")
	return cmd
}

func (c *cli) allocateCmd() *cobra.Command {
	var (
		req      client.AllocateRequest
		sections []uint
	)
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate form sections and an MCC/MPP to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if req.Role == 0 || req.UserID == 0 || len(sections) == 0 {
				return fmt.Errorf("--role, --user-id and --sections are required")
			}

			cascade := console.NewCascadeSelection(c.client, 100)
			if err := cascade.SelectMCC(ctx, req.MCCCode); err != nil {
				return err
			}
			if err := cascade.SelectMPP(req.MPPCode); err != nil {
				return err
			}
			req.SectionIDs = sections
			req.MCCCode = cascade.MCC
			req.MPPCode = cascade.MPP

			var assigned *client.Assignment
			err := c.guard.Run("allocate", func() error {
				return c.store.Mutate(ctx, invalidation.AssignmentCreate, func(ctx context.Context) error {
					var err error
					assigned, err = c.client.Allocate(ctx, req)
					return err
				})
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Allocated %s to %s (assignment %d)\n",
				strings.Join(assigned.MPPCodes, ","), assigned.UserName, assigned.ID)
			return nil
		},
	}
	cmd.Flags().UintVar(&req.Role, "role", 0, "Role id")
	cmd.Flags().UintVar(&req.UserID, "user-id", 0, "User id")
	cmd.Flags().UintSliceVar(&sections, "sections", nil, "Form step ids")
	cmd.Flags().StringVar(&req.MCCCode, "mcc", "", "MCC code")
	cmd.Flags().StringVar(&req.MPPCode, "mpp", "", "MPP code under the MCC")
	return cmd
}
