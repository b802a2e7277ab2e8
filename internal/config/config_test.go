package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CALENDAR_PROVIDER", "STATE_PATH", "PRIMARY_TIMEZONE", "LOG_LEVEL", "SYNC_SCHEDULE",
		"CALDAV_ENDPOINT", "ICLOUD_USERNAME", "ICLOUD_APP_SPECIFIC_PASSWORD", "ICLOUD_CALENDAR_NAME",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_ACCOUNT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(cfg, DefaultConfig()); diff != nil {
		t.Error(diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challengeu.yaml")
	data := []byte(`
provider: iCloud
timezone: America/Chicago
icloud:
  username: me@example.com
  app_password: abcd-efgh
  calendar_name: Sports
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	clearEnv(t)
	t.Setenv("ICLOUD_CALENDAR_NAME", "Games")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultConfig()
	want.Provider = ProviderICloud
	want.Timezone = "America/Chicago"
	want.ICloud = ICloudConfig{Username: "me@example.com", Password: "abcd-efgh", CalendarName: "Games"}
	if diff := deep.Equal(cfg, want); diff != nil {
		t.Error(diff)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("provider: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		Name    string
		Mutate  func(*Config)
		WantErr bool
	}{
		{Name: "defaults", Mutate: func(*Config) {}},
		{Name: "google", Mutate: func(c *Config) { c.Provider = ProviderGoogle }},
		{Name: "icloud without credentials", Mutate: func(c *Config) { c.Provider = ProviderICloud }, WantErr: true},
		{
			Name: "icloud",
			Mutate: func(c *Config) {
				c.Provider = ProviderICloud
				c.ICloud.Username, c.ICloud.Password = "me", "pw"
			},
		},
		{Name: "unknown provider", Mutate: func(c *Config) { c.Provider = "outlook" }, WantErr: true},
		{Name: "bad timezone", Mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, WantErr: true},
	} {
		cfg := DefaultConfig()
		test.Mutate(cfg)
		if err := cfg.Validate(); (err != nil) != test.WantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", test.Name, err, test.WantErr)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"CALENDAR_PROVIDER":    "google",
		"GOOGLE_ACCOUNT":       "personal",
		"STATE_PATH":           "/tmp/state.json",
		"ICLOUD_CALENDAR_NAME": "",
	}
	cfg := DefaultConfig()
	cfg.ICloud.CalendarName = "Home"
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Provider != "google" || cfg.Google.Account != "personal" || cfg.StatePath != "/tmp/state.json" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.ICloud.CalendarName != "Home" {
		t.Errorf("empty env var overwrote calendar name: %q", cfg.ICloud.CalendarName)
	}
}
