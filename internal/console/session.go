package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlesng35/dairyadmin/pkg/client"
)

// ErrNoSession is returned when no session file exists.
var ErrNoSession = errors.New("console: not logged in")

// Session is the persisted login of the CLI.
type Session struct {
	BaseURL  string    `json:"base_url"`
	Token    string    `json:"token"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Redirect string    `json:"redirect"`
	SavedAt  time.Time `json:"saved_at"`
}

// DefaultSessionPath is the session file under the user's config directory.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "dairyadmin", "session.json")
}

// LoadSession reads the session at path.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("console: read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("console: decode session: %w", err)
	}
	if strings.TrimSpace(s.Token) == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// SaveSession writes s to path, readable by the owner only.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("console: create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("console: encode session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("console: write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("console: write session: %w", err)
	}
	return nil
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("console: remove session: %w", err)
	}
	return nil
}

// Authenticator signs in against the API.
type Authenticator interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResult, error)
	BaseURL() string
}

// Login signs in and persists the session. When login fails nothing is
// written and an existing session file is left untouched.
func Login(ctx context.Context, auth Authenticator, path string, req client.LoginRequest) (*Session, error) {
	if strings.TrimSpace(req.Role) == "" {
		req.Role = "admin"
	}
	result, err := auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	s := &Session{
		BaseURL:  auth.BaseURL(),
		Token:    result.Token,
		Email:    result.User.Email,
		Role:     result.Role,
		Redirect: result.Redirect,
		SavedAt:  time.Now().UTC(),
	}
	if err := SaveSession(path, s); err != nil {
		return nil, err
	}
	return s, nil
}
