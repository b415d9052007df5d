// Package config loads and validates the DNS engine's configuration from
// environment variables: koanf for layered loading (defaults, then
// environment), go-playground/validator for struct validation.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ServerConfig controls the process's runtime environment and the
// authoritative/recursive server's listening address.
type ServerConfig struct {
	Env         string `koanf:"env" validate:"required,oneof=dev prod"`
	LogLevel    string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	BindAddress string `koanf:"bind_address" validate:"required"`
	Port        int    `koanf:"port" validate:"required,gte=1,lt=65535"`
}

// TransportConfig holds the transport settings. They are validated and the
// protocol is logged at startup; the server listens on UDP only, whatever
// Protocol says, and MaxUDPMessageSize is not read by the server.
type TransportConfig struct {
	Protocol          string `koanf:"transport_protocol" validate:"required,oneof=udp tcp both"`
	MaxUDPMessageSize int    `koanf:"max_udp_message_size" validate:"required,gte=512,lte=65535"`
}

// ResolverConfig controls the recursive resolver, the response cache, the
// authoritative zone directory, and the optional blocklist.
type ResolverConfig struct {
	ZoneDir             string   `koanf:"zone_dir" validate:"required"`
	DisableCache        bool     `koanf:"disable_cache"`
	CacheSize           uint     `koanf:"cache_size" validate:"required,gte=1"`
	QueryTimeoutSeconds int      `koanf:"query_timeout_seconds" validate:"required,gte=1,lte=60"`
	RootServers         []string `koanf:"root_servers" validate:"omitempty,dive,ip_port"`

	BlocklistEnabled           bool     `koanf:"blocklist_enabled"`
	BlocklistSources           []string `koanf:"blocklist_sources"`
	BlocklistStorePath         string   `koanf:"blocklist_store_path"`
	BlocklistBloomFPRate       float64  `koanf:"blocklist_bloom_fp_rate" validate:"omitempty,gt=0,lt=1"`
	BlocklistDecisionCacheSize int      `koanf:"blocklist_decision_cache_size" validate:"omitempty,gte=0"`
}

// AppConfig is the full, flat set of environment-driven settings, made of
// three embedded structs. Components read their settings from AppConfig
// fields; the embedded structs are not passed on separately.
type AppConfig struct {
	ServerConfig
	TransportConfig
	ResolverConfig
}

// DefaultAppConfig is loaded before any environment override is applied.
var DefaultAppConfig = AppConfig{
	ServerConfig: ServerConfig{
		Env:         "prod",
		LogLevel:    "info",
		BindAddress: "0.0.0.0",
		Port:        53,
	},
	TransportConfig: TransportConfig{
		Protocol:          "udp",
		MaxUDPMessageSize: 4096,
	},
	ResolverConfig: ResolverConfig{
		ZoneDir:                    "/etc/dnsd/zones/",
		DisableCache:               false,
		CacheSize:                  10000,
		QueryTimeoutSeconds:        2,
		BlocklistEnabled:           false,
		BlocklistStorePath:         "/var/lib/dnsd/blocklist.db",
		BlocklistBloomFPRate:       0.01,
		BlocklistDecisionCacheSize: 4096,
	},
}

// validIPPort validates that a field is an "ip:port" pair with a valid IP
// and a port in [1, 65535].
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// envLoader loads environment variables prefixed DNSD_, lower-casing keys
// and splitting space/comma-separated values into slices.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNSD_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DNSD_"))
			value = strings.TrimSpace(value)
			if value == "" {
				return key, value
			}
			if strings.ContainsAny(value, " ,") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}
			return key, value
		},
	}), nil)
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil)
}

var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load parses environment variables into an AppConfig, applying defaults
// first and validating the result.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
