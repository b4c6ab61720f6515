package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional project configuration file looked up at the project root.
const FileName = "muster.yml"

// Defaults applied when muster.yml (or a section of it) is absent
const (
	DefaultAgentsDir       = "agents"
	DefaultBacklogDir      = "backlog"
	DefaultRosterFile      = "roster.yaml"
	DefaultRedisURL        = "redis://localhost:6379/0"
	DefaultInstance        = "default"
	DefaultBoardBaseURL    = "https://api.trello.com/1"
	DefaultBoardBackground = "blue"
	DefaultPermissionLevel = "private"
)

// Environment variables consulted by ApplyEnv and ResolveRoot
const (
	EnvRoot        = "MUSTER_ROOT"
	EnvRedisURL    = "MUSTER_REDIS_URL"
	EnvBoardKey    = "TRELLO_API_KEY"
	EnvBoardToken  = "TRELLO_TOKEN"
	EnvBoardAPIURL = "TRELLO_API_URL"
)

// MusterConfig represents the top-level muster.yml configuration
type MusterConfig struct {
	Version  string          `yaml:"version,omitempty"`
	Paths    *PathsConfig    `yaml:"paths,omitempty"`
	Bulletin *BulletinConfig `yaml:"bulletin,omitempty"`
	Board    *BoardConfig    `yaml:"board,omitempty"`
}

// PathsConfig locates the roster, persona and backlog descriptors relative to the project root
type PathsConfig struct {
	AgentsDir  string `yaml:"agents_dir,omitempty"`
	BacklogDir string `yaml:"backlog_dir,omitempty"`
	RosterFile string `yaml:"roster_file,omitempty"` // Relative to agents_dir
}

// BulletinConfig specifies where published standups and agendas are posted
type BulletinConfig struct {
	RedisURL string `yaml:"redis_url,omitempty"`
	Instance string `yaml:"instance,omitempty"`
}

// BoardConfig specifies the board service used by board-export.
// Credentials are never read from the file.
type BoardConfig struct {
	BaseURL         string `yaml:"base_url,omitempty"`
	Background      string `yaml:"background,omitempty"`
	PermissionLevel string `yaml:"permission_level,omitempty"`

	APIKey string `yaml:"-"`
	Token  string `yaml:"-"`
}

// Default returns a validated configuration with every default applied.
func Default() *MusterConfig {
	c := &MusterConfig{}
	_ = c.Validate()
	return c
}

// Validate applies defaults and rejects unsupported values.
func (c *MusterConfig) Validate() error {
	if c.Version != "" && c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Paths == nil {
		c.Paths = &PathsConfig{}
	}
	if c.Paths.AgentsDir == "" {
		c.Paths.AgentsDir = DefaultAgentsDir
	}
	if c.Paths.BacklogDir == "" {
		c.Paths.BacklogDir = DefaultBacklogDir
	}
	if c.Paths.RosterFile == "" {
		c.Paths.RosterFile = DefaultRosterFile
	}

	if c.Bulletin == nil {
		c.Bulletin = &BulletinConfig{}
	}
	if c.Bulletin.RedisURL == "" {
		c.Bulletin.RedisURL = DefaultRedisURL
	}
	if c.Bulletin.Instance == "" {
		c.Bulletin.Instance = DefaultInstance
	}
	if strings.Contains(c.Bulletin.Instance, ":") {
		return fmt.Errorf("bulletin.instance must not contain ':' (got %q)", c.Bulletin.Instance)
	}

	if c.Board == nil {
		c.Board = &BoardConfig{}
	}
	if c.Board.BaseURL == "" {
		c.Board.BaseURL = DefaultBoardBaseURL
	}
	c.Board.BaseURL = strings.TrimRight(c.Board.BaseURL, "/")
	if c.Board.Background == "" {
		c.Board.Background = DefaultBoardBackground
	}
	if c.Board.PermissionLevel == "" {
		c.Board.PermissionLevel = DefaultPermissionLevel
	}
	switch c.Board.PermissionLevel {
	case "private", "org", "public":
	default:
		return fmt.Errorf("invalid board.permission_level: %s (must be 'private', 'org', or 'public')", c.Board.PermissionLevel)
	}

	return nil
}

// ApplyEnv overlays environment-provided values (credentials, bulletin URL).
func (c *MusterConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvRedisURL); v != "" {
		c.Bulletin.RedisURL = v
	}
	if v := getenv(EnvBoardAPIURL); v != "" {
		c.Board.BaseURL = strings.TrimRight(v, "/")
	}
	c.Board.APIKey = getenv(EnvBoardKey)
	c.Board.Token = getenv(EnvBoardToken)
}

// Load reads and validates muster.yml from the specified path
func Load(path string) (*MusterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config MusterConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadForRoot loads <root>/muster.yml when present, otherwise returns defaults.
// Environment overrides are applied in both cases.
func LoadForRoot(root string, getenv func(string) string) (*MusterConfig, error) {
	path := filepath.Join(root, FileName)
	config, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		config = Default()
	}
	config.ApplyEnv(getenv)
	return config, nil
}

// DotEnvFile holds optional local credentials next to muster.yml.
const DotEnvFile = ".env"

// WithDotEnv returns a lookup that prefers the process environment and falls
// back to <root>/.env. A missing .env leaves getenv unchanged.
func WithDotEnv(root string, getenv func(string) string) (func(string) string, error) {
	values, err := godotenv.Read(filepath.Join(root, DotEnvFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return getenv, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", DotEnvFile, err)
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return values[key]
	}, nil
}

// Paths holds the absolute locations the orchestrator reads from.
type Paths struct {
	Root       string
	AgentsDir  string
	BacklogDir string
	RosterPath string
}

// ResolvePaths anchors the configured directories at root.
func (c *MusterConfig) ResolvePaths(root string) Paths {
	agentsDir := anchor(root, c.Paths.AgentsDir)
	return Paths{
		Root:       root,
		AgentsDir:  agentsDir,
		BacklogDir: anchor(root, c.Paths.BacklogDir),
		RosterPath: anchor(agentsDir, c.Paths.RosterFile),
	}
}

// NewPaths returns default paths anchored at root.
func NewPaths(root string) Paths {
	return Default().ResolvePaths(root)
}

func anchor(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// ResolveRoot picks the project root: explicit flag, then MUSTER_ROOT, then the
// enclosing Git repository, then the working directory.
func ResolveRoot(flagValue string, getenv func(string) string, gitRoot func() (string, error)) (string, error) {
	candidate := flagValue
	if candidate == "" {
		candidate = getenv(EnvRoot)
	}
	if candidate == "" && gitRoot != nil {
		if root, err := gitRoot(); err == nil && root != "" {
			candidate = root
		}
	}
	if candidate == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		candidate = wd
	}

	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root %s: %w", candidate, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root %s is not accessible: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}
