package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Resy struct {
		APIKey          string `yaml:"api_key"`
		AuthToken       string `yaml:"auth_token"`
		PaymentMethodID int64  `yaml:"payment_method_id"`
		Search          struct {
			Latitude  float64 `yaml:"latitude"`
			Longitude float64 `yaml:"longitude"`
			RadiusM   int     `yaml:"radius_m"`
		} `yaml:"search"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"resy"`

	User struct {
		Timezone                 string   `yaml:"timezone"`
		PreferredDays            []string `yaml:"preferred_days"`
		PreferredStartTime       string   `yaml:"preferred_start_time"`
		PreferredEndTime         string   `yaml:"preferred_end_time"`
		PartySize                int      `yaml:"party_size"`
		PreferredSeating         []string `yaml:"preferred_seating"`
		ReservationDurationHours int      `yaml:"reservation_duration_hours"`
		HorizonDays              int      `yaml:"horizon_days"`
	} `yaml:"user"`

	Google struct {
		CredentialsPath string   `yaml:"credentials_path"`
		TokenPath       string   `yaml:"token_path"`
		CalendarIDs     []string `yaml:"calendar_ids"`
		EventCalendarID string   `yaml:"event_calendar_id"`
		SheetID         string   `yaml:"sheet_id"`
	} `yaml:"google"`

	Email struct {
		Enabled   bool   `yaml:"enabled"`
		Recipient string `yaml:"recipient"`
	} `yaml:"email"`

	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`

	Report struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"report"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Agent struct {
		IntervalHours int `yaml:"interval_hours"`
	} `yaml:"agent"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.User.Timezone == "" {
		c.User.Timezone = "America/Los_Angeles"
	}
	if c.User.PartySize <= 0 {
		c.User.PartySize = 2
	}
	if c.User.ReservationDurationHours <= 0 {
		c.User.ReservationDurationHours = 2
	}
	if c.User.HorizonDays <= 0 {
		c.User.HorizonDays = 14
	}
	if c.Google.EventCalendarID == "" {
		c.Google.EventCalendarID = "primary"
	}
	if c.Resy.Search.Latitude == 0 && c.Resy.Search.Longitude == 0 {
		// Default venue search area: San Francisco.
		c.Resy.Search.Latitude = 37.7749
		c.Resy.Search.Longitude = -122.4194
		c.Resy.Search.RadiusM = 32200
	}
	if c.Agent.IntervalHours <= 0 {
		c.Agent.IntervalHours = 6
	}
}

func (c *Config) validate() error {
	if c.Resy.APIKey == "" {
		return fmt.Errorf("resy.api_key is required")
	}
	if c.Resy.AuthToken == "" {
		return fmt.Errorf("resy.auth_token is required")
	}
	if _, err := time.LoadLocation(c.User.Timezone); err != nil {
		return fmt.Errorf("user.timezone: %w", err)
	}
	if len(c.User.PreferredDays) == 0 {
		return fmt.Errorf("user.preferred_days must name at least one weekday")
	}
	for _, day := range c.User.PreferredDays {
		if !validWeekday(day) {
			return fmt.Errorf("user.preferred_days: unknown weekday %q", day)
		}
	}
	if !validClock(c.User.PreferredStartTime) {
		return fmt.Errorf("user.preferred_start_time: want HH:MM, got %q", c.User.PreferredStartTime)
	}
	if !validClock(c.User.PreferredEndTime) {
		return fmt.Errorf("user.preferred_end_time: want HH:MM, got %q", c.User.PreferredEndTime)
	}
	return nil
}

// Location returns the user timezone. validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, _ := time.LoadLocation(c.User.Timezone)
	return loc
}

func (c *Config) ReservationDuration() time.Duration {
	return time.Duration(c.User.ReservationDurationHours) * time.Hour
}

func (c *Config) RunInterval() time.Duration {
	return time.Duration(c.Agent.IntervalHours) * time.Hour
}

func (c *Config) ResyCacheTTL() time.Duration {
	return time.Duration(c.Resy.CacheTTLSeconds) * time.Second
}

func validWeekday(name string) bool {
	switch name {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}

func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
