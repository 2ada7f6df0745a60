package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"carecal/internal/model"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "~/.carecal/config.yaml"

// KeyringService is the OS keyring service name for subscription passwords.
const KeyringService = "carecal"

var (
	ErrEmptyPath = errors.New("config path is empty")
	ErrNilConfig = errors.New("config is nil")
)

// ICSConfig describes one subscribed calendar feed, e.g. a caregiver's
// shared calendar.
type ICSConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`

	// Username enables HTTP Basic Auth for the feed. The password is read
	// from the OS keyring (service KeyringService, user Username) when
	// Keyring is true.
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Keyring  bool   `yaml:"keyring,omitempty" json:"keyring,omitempty"`
}

// BasicAuthConfig protects the HTTP API. PasswordHash (bcrypt) takes
// precedence over Password.
type BasicAuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password,omitempty" json:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty" json:"password_hash,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone that decides what "today" is.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "sunday" (default, matches the app's Su..Sa header) or "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// Language is one of "en", "ta", "si".
	Language string `yaml:"language" json:"language"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is the cron schedule for subscription refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// FamilyVCard optionally seeds the family roster from a .vcf file.
	FamilyVCard string `yaml:"family_vcard,omitempty" json:"family_vcard,omitempty"`

	Emergency []model.Contact `yaml:"emergency" json:"emergency"`

	// TimeSlots are the choices offered by the add-schedule screen.
	TimeSlots []string `yaml:"time_slots" json:"time_slots"`

	// SeedEvents are copied into every new schedule session.
	SeedEvents []model.Event `yaml:"seed_events,omitempty" json:"seed_events,omitempty"`
}

func defaultEmergency() []model.Contact {
	return []model.Contact{
		{Title: "Family Call", Phone: ""},
		{Title: "Ambulance", Phone: "1990"},
		{Title: "Police", Phone: "119"},
	}
}

func defaultTimeSlots() []string {
	return []string{"8.00 AM", "10.00 AM", "12.00 PM", "2.00 PM", "4.00 PM", "6.00 PM"}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Asia/Colombo",
		WeekStart:   "sunday",
		Language:    "en",
		LogLevel:    "info",
		RefreshCron: "*/15 * * * *",
		CacheDir:    "~/.carecal/ics-cache",
		ICS:         []ICSConfig{},
		Emergency:   defaultEmergency(),
		TimeSlots:   defaultTimeSlots(),
	}
}

// Normalize fills in missing/zero values so partially-filled files behave.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	switch strings.ToLower(c.WeekStart) {
	case "monday":
		c.WeekStart = "monday"
	default:
		c.WeekStart = "sunday"
	}
	switch c.Language {
	case "en", "ta", "si":
	default:
		c.Language = d.Language
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.RefreshCron == "" {
		c.RefreshCron = d.RefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			if c.ICS[i].Name != "" {
				c.ICS[i].ID = c.ICS[i].Name
			} else {
				c.ICS[i].ID = c.ICS[i].URL
			}
		}
	}
	if c.Emergency == nil {
		c.Emergency = d.Emergency
	}
	if len(c.TimeSlots) == 0 {
		c.TimeSlots = d.TimeSlots
	}
	c.SeedEvents = normalizeSeeds(c.SeedEvents)
}

// normalizeSeeds drops seed events the add form would refuse (blank title
// or time, date outside 1..31) and gives the rest an ID.
func normalizeSeeds(in []model.Event) []model.Event {
	if len(in) == 0 {
		return in
	}
	out := make([]model.Event, 0, len(in))
	for _, ev := range in {
		ev.Title = strings.TrimSpace(ev.Title)
		ev.Time = strings.TrimSpace(ev.Time)
		if ev.Title == "" || ev.Time == "" || !model.ValidDay(ev.Date) {
			continue
		}
		if strings.TrimSpace(ev.ID) == "" {
			ev.ID = uuid.NewString()
		}
		out = append(out, ev)
	}
	return out
}

// Weekday returns WeekStart as a time.Weekday.
func (c *Config) Weekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ExpandPath resolves a leading "~" against the user's home directory.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", ErrEmptyPath
	}
	return homedir.Expand(p)
}

// Load reads the YAML file at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("write default config: %w", err)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg atomically (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return ErrNilConfig
	}
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".carecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
