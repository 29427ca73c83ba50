package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlesng35/dairyadmin/internal/console"
	"github.com/charlesng35/dairyadmin/pkg/client"
)

func (c *cli) loginCmd() *cobra.Command {
	var req client.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(req.Email) == "" || req.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			session, err := console.Login(cmd.Context(), c.client, c.sessionPath, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Logged in as %s (%s)\n", session.Email, session.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&req.Role, "role", "admin", "Login role")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := console.ClearSession(c.sessionPath); err != nil {
				return err
			}
			c.client.SetToken("")
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user and granted modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := c.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if c.output == "json" {
				return writeJSON(c.out, profile)
			}
			fmt.Fprintf(c.out, "%s <%s>\n", profile.User.Name, profile.User.Email)
			if len(profile.Modules) > 0 {
				fmt.Fprintf(c.out, "modules: %s\n", strings.Join(profile.Modules, ", "))
			}
			return nil
		},
	}
}
