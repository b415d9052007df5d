package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("Env = %q, want prod", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Port != 53 {
		t.Errorf("Port = %d, want 53", cfg.Port)
	}
	if cfg.Protocol != "udp" {
		t.Errorf("Protocol = %q, want udp", cfg.Protocol)
	}
	if cfg.ZoneDir != "/etc/dnsd/zones/" {
		t.Errorf("ZoneDir = %q, want /etc/dnsd/zones/", cfg.ZoneDir)
	}
	if cfg.CacheSize != 10000 {
		t.Errorf("CacheSize = %d, want 10000", cfg.CacheSize)
	}
	if cfg.BlocklistEnabled {
		t.Error("BlocklistEnabled should default to false")
	}
}

func TestLoadValidOverrides(t *testing.T) {
	t.Setenv("DNSD_ENV", "dev")
	t.Setenv("DNSD_LOG_LEVEL", "debug")
	t.Setenv("DNSD_ZONE_DIR", "/tmp/zones/")
	t.Setenv("DNSD_ROOT_SERVERS", "198.41.0.4:53,199.9.14.201:53")
	t.Setenv("DNSD_PORT", "9953")
	t.Setenv("DNSD_CACHE_SIZE", "2000")
	t.Setenv("DNSD_BLOCKLIST_ENABLED", "true")
	t.Setenv("DNSD_BLOCKLIST_SOURCES", "/etc/dnsd/hosts.txt,/etc/dnsd/plain.txt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.ZoneDir != "/tmp/zones/" {
		t.Errorf("ZoneDir = %q, want /tmp/zones/", cfg.ZoneDir)
	}
	if cfg.Port != 9953 {
		t.Errorf("Port = %d, want 9953", cfg.Port)
	}
	if cfg.CacheSize != 2000 {
		t.Errorf("CacheSize = %d, want 2000", cfg.CacheSize)
	}
	wantRoots := []string{"198.41.0.4:53", "199.9.14.201:53"}
	if len(cfg.RootServers) != len(wantRoots) {
		t.Fatalf("RootServers length = %d, want %d", len(cfg.RootServers), len(wantRoots))
	}
	for i, v := range wantRoots {
		if cfg.RootServers[i] != v {
			t.Errorf("RootServers[%d] = %q, want %q", i, cfg.RootServers[i], v)
		}
	}
	if !cfg.BlocklistEnabled {
		t.Error("BlocklistEnabled = false, want true")
	}
	wantSources := []string{"/etc/dnsd/hosts.txt", "/etc/dnsd/plain.txt"}
	if len(cfg.BlocklistSources) != len(wantSources) {
		t.Fatalf("BlocklistSources length = %d, want %d", len(cfg.BlocklistSources), len(wantSources))
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("DNSD_ENV", "staging")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid env")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("DNSD_LOG_LEVEL", "trace")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("DNSD_PORT", "99999")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoadInvalidZoneDir(t *testing.T) {
	t.Setenv("DNSD_ZONE_DIR", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty zone dir")
	}
}

func TestLoadInvalidRootServer(t *testing.T) {
	t.Setenv("DNSD_ROOT_SERVERS", "not_an_ip_port")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid root server address")
	}
}

func TestLoadWhenDefaultLoaderFails(t *testing.T) {
	orig := defaultLoader
	defaultLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { defaultLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading defaults")
	}
}

func TestLoadWhenEnvLoaderFails(t *testing.T) {
	orig := envLoader
	envLoader = func(k *koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { envLoader = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked error") {
		t.Fatal("expected error when loading env")
	}
}

func TestLoadWhenRegisterValidationFails(t *testing.T) {
	orig := registerValidation
	registerValidation = func(v *validator.Validate) error { return errors.New("mocked validation error") }
	defer func() { registerValidation = orig }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "mocked validation error") {
		t.Fatal("expected error when registering validation")
	}
}

func TestValidIPPort(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
	}{
		{"1.2.3.4:53", true},
		{"127.0.0.1:5353", true},
		{"::1:53", false},
		{"[::1]:53", true},
		{"192.168.1.1:", false},
		{":53", false},
		{"not_an_ip:53", false},
		{"1.2.3.4:notaport", false},
		{"", false},
		{"1.2.3.4", false},
	}

	validate := validator.New()
	_ = validate.RegisterValidation("ip_port", validIPPort)

	type wrapper struct {
		Addr string `validate:"ip_port"`
	}

	for _, tc := range cases {
		err := validate.Struct(wrapper{Addr: tc.input})
		if tc.expected && err != nil {
			t.Errorf("validIPPort(%q): got invalid, want valid", tc.input)
		}
		if !tc.expected && err == nil {
			t.Errorf("validIPPort(%q): got valid, want invalid", tc.input)
		}
	}
}

func TestDefaultLoaderLoadsDefaults(t *testing.T) {
	k := koanf.New(".")
	if err := defaultLoader(k); err != nil {
		t.Fatalf("defaultLoader: %v", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if cfg.Env != DefaultAppConfig.Env {
		t.Errorf("Env = %q, want %q", cfg.Env, DefaultAppConfig.Env)
	}
	if cfg.Port != DefaultAppConfig.Port {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultAppConfig.Port)
	}
	if cfg.ZoneDir != DefaultAppConfig.ZoneDir {
		t.Errorf("ZoneDir = %q, want %q", cfg.ZoneDir, DefaultAppConfig.ZoneDir)
	}
}
