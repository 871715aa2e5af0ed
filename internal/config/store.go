package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devlg/devlg/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory under $HOME holding the config file.
	ConfigDir = ".config/devlg"
	// ConfigFileName is the config file name.
	ConfigFileName = "config.yaml"
)

// Path returns the config file location.
// DEVLG_CONFIG overrides the default ~/.config/devlg/config.yaml.
func Path() (string, error) {
	if override := os.Getenv("DEVLG_CONFIG"); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't locate your home directory",
			"Set DEVLG_CONFIG to an explicit config file path.")
	}
	return filepath.Join(home, ConfigDir, ConfigFileName), nil
}

// Load reads the config from the default location.
// A missing file yields an empty config, not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check that "+path+" is valid YAML.")
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path, creating parent
// directories as needed. The file holds credentials, so it is
// written 0600.
func (c *Config) SaveTo(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't create config directory %s", dir),
				"Check directory permissions.")
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't generate the config file",
			"This is unexpected - please report this bug!")
	}

	header := `# devlg session bookmarks
# Run 'devlg login <name>' to open an interactive session

`
	if err := os.WriteFile(path, []byte(header+string(data)), 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write config file to %s", path),
			"Check that you have write permissions.")
	}
	return nil
}

// Get returns the session with the given name, or nil.
func (c *Config) Get(name string) *Session {
	for i := range c.Sessions {
		if c.Sessions[i].Name == name {
			return &c.Sessions[i]
		}
	}
	return nil
}

// Add appends a validated session. Duplicate names are rejected.
func (c *Config) Add(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if c.Get(s.Name) != nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' already exists", s.Name),
			"Pick a different name, or use 'devlg modify' to change it.")
	}
	c.Sessions = append(c.Sessions, s)
	return nil
}

// Update replaces the session with the same name.
func (c *Config) Update(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for i := range c.Sessions {
		if c.Sessions[i].Name == s.Name {
			c.Sessions[i] = s
			return nil
		}
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Session '%s' not found", s.Name),
		"Run 'devlg list' to see configured sessions.")
}

// Remove deletes the session with the given name.
func (c *Config) Remove(name string) error {
	for i := range c.Sessions {
		if c.Sessions[i].Name == name {
			c.Sessions = append(c.Sessions[:i], c.Sessions[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Session '%s' not found", name),
		"Run 'devlg list' to see configured sessions.")
}

// RemoveByTag deletes every session carrying the given tag and
// returns the names removed.
func (c *Config) RemoveByTag(tag string) []string {
	var removed []string
	kept := c.Sessions[:0]
	for _, s := range c.Sessions {
		if s.HasTag(tag) {
			removed = append(removed, s.Name)
			continue
		}
		kept = append(kept, s)
	}
	c.Sessions = kept
	return removed
}

// FilterByTags returns the sessions carrying at least one of the tags.
// An empty tag list matches everything.
func (c *Config) FilterByTags(tags []string) []Session {
	if len(tags) == 0 {
		return c.Sessions
	}
	var out []Session
	for _, s := range c.Sessions {
		if s.HasAnyTag(tags) {
			out = append(out, s)
		}
	}
	return out
}

// Search returns sessions whose name contains the query, optionally
// restricted to the given tags. An exact name match is returned alone.
func (c *Config) Search(query string, tags []string) []Session {
	var out []Session
	for _, s := range c.FilterByTags(tags) {
		if s.Name == query {
			return []Session{s}
		}
		if query == "" || containsFold(s.Name, query) {
			out = append(out, s)
		}
	}
	return out
}

// GetTemplate returns the template with the given name, or nil.
func (c *Config) GetTemplate(name string) *Session {
	for i := range c.Templates {
		if c.Templates[i].Name == name {
			return &c.Templates[i]
		}
	}
	return nil
}

// AddTemplate stores a session under a template name. The template
// keeps the source session's connection settings but takes its own name.
func (c *Config) AddTemplate(name string, from Session) error {
	if c.GetTemplate(name) != nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Template '%s' already exists", name),
			"Pick a different name, or delete the old template first.")
	}
	from.Name = name
	c.Templates = append(c.Templates, from)
	return nil
}

// RemoveTemplate deletes the template with the given name.
func (c *Config) RemoveTemplate(name string) error {
	for i := range c.Templates {
		if c.Templates[i].Name == name {
			c.Templates = append(c.Templates[:i], c.Templates[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Template '%s' not found", name),
		"Run 'devlg template list' to see stored templates.")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
