package sslrelay

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable recognized for locating the
// relay configuration file when the caller does not pass an explicit path.
const EnvConfigPath = "SSLRELAY_CONFIG"

// TLSMaterial supplies the downstream TLS certificate and private key,
// either loaded from files or provided in memory. The zero value means
// "none", which is only valid when the config's DownstreamKind is KindRaw.
type TLSMaterial struct {
	CertPEM []byte
	KeyPEM  []byte
}

func (m *TLSMaterial) isSet() bool { return m != nil && len(m.CertPEM) > 0 && len(m.KeyPEM) > 0 }

// LoadTLSMaterialFile reads a PEM certificate chain and PEM private key
// from disk.
func LoadTLSMaterialFile(certPath, keyPath string) (*TLSMaterial, error) {
	cert, err := os.ReadFile(certPath)
	if err != nil {
		return nil, newConfigError("ssl_cert_path", err)
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, newConfigError("ssl_private_key_path", err)
	}
	return &TLSMaterial{CertPEM: cert, KeyPEM: key}, nil
}

// Config is the process-lifetime, immutable-after-construction RelayConfig
// from the spec: bind/remote endpoints, the downstream/upstream stream
// kinds, and the TLS material needed when the downstream kind is TLS.
type Config struct {
	BindHost   string
	BindPort   int
	RemoteHost string
	RemotePort int

	DownstreamKind StreamKind
	UpstreamKind   StreamKind

	TLSMaterial *TLSMaterial

	// VerifyUpstreamCert controls upstream TLS hostname/chain verification.
	// The source this library is modeled on disabled verification
	// unconditionally. LoadConfig sets this to true (verification on) unless
	// verify_upstream_cert: false is given. A hand-built Config is used as
	// is: its zero value, false, disables verification.
	VerifyUpstreamCert bool

	// MaxBufferBytes bounds each worker's per-drain accumulation buffer. 0
	// selects EngineOptions' default; negative disables the bound.
	MaxBufferBytes int

	// ReadTimeout is the worker command-poll / socket-read interval. Zero
	// keeps EngineOptions.PollInterval (DefaultPollInterval when unset).
	ReadTimeout time.Duration
}

// rawConfig mirrors the on-disk YAML shape described in spec.md §6.
type rawConfig struct {
	BindHost           string `yaml:"bind_host"`
	BindPort           int    `yaml:"bind_port"`
	RemoteHost         string `yaml:"remote_host"`
	RemotePort         int    `yaml:"remote_port"`
	UpstreamDataType   string `yaml:"upstream_data_type"`
	DownstreamDataType string `yaml:"downstream_data_type"`
	SSLPrivateKeyPath  string `yaml:"ssl_private_key_path"`
	SSLCertPath        string `yaml:"ssl_cert_path"`
	VerifyUpstreamCert *bool  `yaml:"verify_upstream_cert"`
	MaxBufferBytes     int    `yaml:"max_buffer_bytes"`
	ReadTimeoutMs      int    `yaml:"read_timeout_ms"`
}

// LoadConfig reads and validates the YAML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newConfigError("", fmt.Errorf("read config: %w", err))
	}
	return parseConfig(data)
}

// LoadConfigFromEnv resolves the configuration path from EnvConfigPath and
// loads it, exactly as ConfigType::Env does in the source.
func LoadConfigFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return nil, newConfigError("", fmt.Errorf("environment variable %s is not set", EnvConfigPath))
	}
	return LoadConfig(path)
}

func parseConfig(data []byte) (*Config, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, newConfigError("", fmt.Errorf("parse config: %w", err))
	}

	if rc.BindHost == "" {
		return nil, newConfigError("bind_host", fmt.Errorf("is required"))
	}
	if err := validatePort(rc.BindPort); err != nil {
		return nil, newConfigError("bind_port", err)
	}
	if rc.RemoteHost == "" {
		return nil, newConfigError("remote_host", fmt.Errorf("is required"))
	}
	if err := validatePort(rc.RemotePort); err != nil {
		return nil, newConfigError("remote_port", err)
	}

	downstreamKind, err := parseStreamKind(rc.DownstreamDataType)
	if err != nil {
		return nil, newConfigError("downstream_data_type", err)
	}
	upstreamKind, err := parseStreamKind(rc.UpstreamDataType)
	if err != nil {
		return nil, newConfigError("upstream_data_type", err)
	}

	cfg := &Config{
		BindHost:           rc.BindHost,
		BindPort:           rc.BindPort,
		RemoteHost:         rc.RemoteHost,
		RemotePort:         rc.RemotePort,
		DownstreamKind:     downstreamKind,
		UpstreamKind:       upstreamKind,
		VerifyUpstreamCert: true,
		MaxBufferBytes:     rc.MaxBufferBytes,
	}
	if rc.VerifyUpstreamCert != nil {
		cfg.VerifyUpstreamCert = *rc.VerifyUpstreamCert
	}
	if rc.ReadTimeoutMs > 0 {
		cfg.ReadTimeout = time.Duration(rc.ReadTimeoutMs) * time.Millisecond
	}

	if downstreamKind == KindTLS {
		if rc.SSLCertPath == "" || rc.SSLPrivateKeyPath == "" {
			return nil, newConfigError("ssl_cert_path", fmt.Errorf("required when downstream_data_type is tls"))
		}
		mat, err := LoadTLSMaterialFile(rc.SSLCertPath, rc.SSLPrivateKeyPath)
		if err != nil {
			return nil, err
		}
		cfg.TLSMaterial = mat
	}

	return cfg, nil
}

func validatePort(p int) error {
	if p < 1 || p > 65535 {
		return fmt.Errorf("port %d out of range (1-65535)", p)
	}
	return nil
}

func parseStreamKind(s string) (StreamKind, error) {
	switch strings.ToLower(s) {
	case "tls":
		return KindTLS, nil
	case "raw":
		return KindRaw, nil
	default:
		return 0, fmt.Errorf("unrecognized data type %q, want \"tls\" or \"raw\"", s)
	}
}

// BindAddress renders the host:port pair Relay.Run binds its listener to.
func (c *Config) BindAddress() string {
	return net.JoinHostPort(c.BindHost, strconv.Itoa(c.BindPort))
}

// invariant check, surfaced as a method so callers (and tests) can validate
// a hand-built Config the same way a decoded one is validated.
func (c *Config) validate() error {
	if c.DownstreamKind == KindTLS && !c.TLSMaterial.isSet() {
		return newConfigError("tls_material", fmt.Errorf("downstream_kind is tls but no TLS material was supplied"))
	}
	return nil
}
