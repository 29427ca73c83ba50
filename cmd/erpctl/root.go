package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlesng35/dairyadmin/internal/app"
	"github.com/charlesng35/dairyadmin/internal/console"
	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/pkg/client"
	"github.com/charlesng35/dairyadmin/pkg/logger"
)

// cli carries the state shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer

	configPath  string
	server      string
	sessionPath string
	output      string

	cfg     *app.Config
	session *console.Session
	client  *client.Client
	store   *console.Store
	guard   *console.SubmitGuard
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut, guard: &console.SubmitGuard{}}

	root := &cobra.Command{
		Use:   "erpctl",
		Short: "Admin console for the dairy cooperative ERP",
		Long: `Admin console for the dairy cooperative ERP.
Manages roles, approval hierarchies, users, section allocation and master data
through the admin API.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.setup() },
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to configuration directory or file")
	root.PersistentFlags().StringVar(&c.server, "server", "", "API base URL (overrides config and session)")
	root.PersistentFlags().StringVar(&c.sessionPath, "session", "", "Session file path")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "Output format: table or json")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.meCmd(),
		c.listCmd(),
		c.assignmentsCmd(),
		c.allocateCmd(),
		c.roleCmd(),
		c.hierarchyCmd(),
		c.templateCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.summaryCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) setup() error {
	switch c.output {
	case "table", "json":
	default:
		return fmt.Errorf("unsupported output format %q", c.output)
	}

	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if strings.TrimSpace(c.sessionPath) == "" {
		c.sessionPath = cfg.Client.SessionFile
	}
	if strings.TrimSpace(c.sessionPath) == "" {
		c.sessionPath = console.DefaultSessionPath()
	}

	session, err := console.LoadSession(c.sessionPath)
	switch {
	case errors.Is(err, console.ErrNoSession):
		session = nil
	case err != nil:
		return err
	}
	c.session = session

	baseURL := strings.TrimSpace(c.server)
	if baseURL == "" && session != nil {
		baseURL = session.BaseURL
	}
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}

	var token string
	if session != nil {
		token = session.Token
	}

	c.client = client.New(client.Config{
		BaseURL: baseURL,
		Timeout: cfg.Client.Timeout,
		Token:   token,
		Logger:  logger.WithModule("erpctl"),
	})
	c.store = console.NewStore(c.client)
	return nil
}

func loadConfig(path string) (*app.Config, error) {
	if strings.TrimSpace(path) == "" {
		return app.LoadConfig()
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
	if info.IsDir() {
		return app.LoadConfig(path)
	}
	return app.LoadConfig(filepath.Dir(path))
}

// describeError expands API and validation errors with their field messages.
func describeError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if apiErr.Code != "" && apiErr.Code != apiErr.Message {
			msg = fmt.Sprintf("%s (%s)", msg, apiErr.Code)
		}
		return msg + formatFields(apiErr.Fields)
	}
	var verr *hierarchy.ValidationError
	if errors.As(err, &verr) {
		return "invalid hierarchy" + formatFields(verr.Fields)
	}
	return err.Error()
}

func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", key, fields[key])
	}
	return b.String()
}
