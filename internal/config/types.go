package config

import (
	"fmt"

	"github.com/devlg/devlg/internal/errors"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// AuthType selects which credential a session carries.
type AuthType string

const (
	// AuthKey authenticates with a private key file.
	AuthKey AuthType = "key"
	// AuthPassword authenticates with a stored password.
	AuthPassword AuthType = "password"
)

// ParseAuthType converts a user-supplied string into an AuthType.
func ParseAuthType(s string) (AuthType, error) {
	switch AuthType(s) {
	case AuthKey:
		return AuthKey, nil
	case AuthPassword:
		return AuthPassword, nil
	}
	return "", errors.New(errors.ErrConfig,
		fmt.Sprintf("'%s' isn't a valid auth type", s),
		"Use 'key' or 'password'.")
}

// Session is a named remote-login bookmark.
type Session struct {
	Name     string   `yaml:"name" mapstructure:"name"`
	Host     string   `yaml:"host" mapstructure:"host"`
	User     string   `yaml:"user" mapstructure:"user"`
	Port     int      `yaml:"port" mapstructure:"port"`
	AuthType AuthType `yaml:"auth_type" mapstructure:"auth_type"`

	// KeyPath is the private key file, required when AuthType is "key".
	KeyPath string `yaml:"key_path,omitempty" mapstructure:"key_path"`

	// Password is stored in the clear, required when AuthType is "password".
	// The config file itself is written 0600.
	Password string `yaml:"password,omitempty" mapstructure:"password"`

	// Tags for filtering with --tags.
	Tags []string `yaml:"tags,omitempty" mapstructure:"tags"`

	// StrictHostKey disables known_hosts verification when explicitly
	// set to false. Unset means strict.
	StrictHostKey *bool `yaml:"strict_host_key,omitempty" mapstructure:"strict_host_key"`
}

// Config represents the complete devlg config file.
type Config struct {
	Version   int       `yaml:"version" mapstructure:"version"`
	Sessions  []Session `yaml:"sessions" mapstructure:"sessions"`
	Templates []Session `yaml:"templates,omitempty" mapstructure:"templates"`
}

// DefaultConfig returns an empty config at the current schema version.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Sessions: []Session{},
	}
}

// Label renders the session as shown in pickers and listings:
// name (user@host:port) [tags].
func (s *Session) Label() string {
	label := fmt.Sprintf("%s (%s@%s:%d)", s.Name, s.User, s.Host, s.Port)
	if len(s.Tags) > 0 {
		label += " [" + joinTags(s.Tags) + "]"
	}
	return label
}

// HasTag reports whether the session carries the given tag.
func (s *Session) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the session carries at least one of the tags.
func (s *Session) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if s.HasTag(t) {
			return true
		}
	}
	return false
}

// Validate checks the session for completeness.
func (s *Session) Validate() error {
	if s.Name == "" {
		return errors.New(errors.ErrConfig,
			"Session name can't be empty",
			"Give the session a name with --name.")
	}
	if s.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' has no host", s.Name),
			"Set one with --host.")
	}
	if s.User == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' has no user", s.Name),
			"Set one with --user.")
	}
	if s.Port < 1 || s.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' has invalid port %d", s.Name, s.Port),
			"Ports run from 1 to 65535. SSH usually listens on 22.")
	}
	switch s.AuthType {
	case AuthKey:
		if s.KeyPath == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Session '%s' uses key auth but has no key path", s.Name),
				"Set one with --key-path, e.g. ~/.ssh/id_ed25519.")
		}
	case AuthPassword:
		if s.Password == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Session '%s' uses password auth but has no password", s.Name),
				"Set one with --password.")
		}
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' has unknown auth type '%s'", s.Name, s.AuthType),
			"Use 'key' or 'password'.")
	}
	return nil
}

// Validate checks the whole config file.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but devlg only knows up to %d)",
				cfg.Version, CurrentConfigVersion),
			"Update devlg to the latest release.")
	}

	seen := make(map[string]bool, len(cfg.Sessions))
	for i := range cfg.Sessions {
		s := &cfg.Sessions[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Session '%s' is defined twice", s.Name),
				"Session names must be unique. Edit the config file to fix this.")
		}
		seen[s.Name] = true
	}
	return nil
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}
