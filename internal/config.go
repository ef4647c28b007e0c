package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kristianernst/fast-slides/internal/projectsvc"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Defaults shared by the desktop app and its helpers.
const (
	DefaultHookAddr    = "127.0.0.1:38473"
	DefaultHomeDirName = ".fastslides"
	HistoryFileName    = "history.db"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	FastSlides FastSlidesConfig  `yaml:"fastslides"`
	History    HistoryConfig     `yaml:"history"`
	Watch      WatchConfig       `yaml:"watch"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.FastSlides.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplyEnv overrides file values with the FASTSLIDES_* environment
// variables understood by the desktop app. Empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.FastSlides.Home, "FASTSLIDES_HOME")
	set(&c.FastSlides.ProjectsDir, "FASTSLIDES_PROJECTS_DIR")
	set(&c.FastSlides.PreviewURL, "FASTSLIDES_PREVIEW_URL", "NEXT_PUBLIC_FASTSLIDES_PREVIEW_URL")
	set(&c.FastSlides.SkillDir, "FASTSLIDES_SKILL_DIR")
	set(&c.App.HTTP.Address, "FASTSLIDES_AGENT_HOOK_ADDR")
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	LogFile  string     `yaml:"log_file"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds control-plane listener configuration.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Address, validation.Required, validation.By(hostPort)),
	)
}

func hostPort(value any) error {
	s, _ := value.(string)
	i := strings.LastIndex(s, ":")
	if i < 0 || i == len(s)-1 {
		return errors.New("must be host:port")
	}
	return nil
}

// FastSlidesConfig locates the registry home and the desktop helpers.
type FastSlidesConfig struct {
	// Home holds config.json; empty means ~/.fastslides.
	Home string `yaml:"home"`
	// ProjectsDir seeds the first projects root when no registry exists yet.
	ProjectsDir string `yaml:"projects_dir"`
	PreviewURL  string `yaml:"preview_url"`
	// SkillDir is searched before the per-user agent skill folders.
	SkillDir string `yaml:"skill_dir"`
}

// Validate validates the FastSlides configuration.
func (c *FastSlidesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PreviewURL, validation.Required, validation.By(httpURL)),
	)
}

func httpURL(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

// HomeDir resolves the registry home folder.
func (c *FastSlidesConfig) HomeDir() (string, error) {
	if strings.TrimSpace(c.Home) != "" {
		return storage.ExpandUser(strings.TrimSpace(c.Home)), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve FASTSLIDES_HOME or HOME: %w", err)
	}
	return filepath.Join(home, DefaultHomeDirName), nil
}

// HistoryConfig holds the validation journal configuration.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path of the SQLite database; empty means history.db in the home folder.
	Path string `yaml:"path"`
	// Keep is the number of runs kept per project; 0 keeps everything.
	Keep int `yaml:"keep"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Keep, validation.Min(0)),
	)
}

// DBPath resolves the journal database path against the registry home.
func (c *HistoryConfig) DBPath(home string) string {
	if strings.TrimSpace(c.Path) != "" {
		return storage.ExpandUser(c.Path)
	}
	return filepath.Join(home, HistoryFileName)
}

// WatchConfig controls live revalidation of recent projects.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
	Rescan   time.Duration `yaml:"rescan"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
		validation.Field(&c.Rescan, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Address: DefaultHookAddr,
			},
		},
		FastSlides: FastSlidesConfig{
			PreviewURL: projectsvc.DefaultPreviewURL,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    200,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
			Rescan:   5 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
