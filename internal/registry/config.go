// Package registry loads and validates the static platform configuration and
// exposes O(1) whitelist lookups. The configuration is read once at bootstrap
// and is immutable for the process lifetime; any schema violation is fatal.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrConfigFileNotSet is returned when the CONFIG_FILE env var is missing.
var ErrConfigFileNotSet = errors.New("APPLICATION_BOOT::CONFIG_FILE_NOT_SET")

// ConfigFileEnv is the environment variable holding the config file path.
const ConfigFileEnv = "CONFIG_FILE"

// NetworkConfig is the per-chain section of the NETWORKS map.
type NetworkConfig struct {
	RPCURL             string `json:"RPC_URL"`
	WSURL              string `json:"WS_URL"`
	ChainID            int64  `json:"CHAIN_ID"`
	SwapProgramAddress string `json:"SWAP_PROGRAM_ADDRESS"`
	Multicall3Address  string `json:"MULTICALL3_PROGRAM_ADDRESS"`
	SeitraceAPIKey     string `json:"SEITRACE_API_KEY"`
	DebankAPIKey       string `json:"DEBANK_API_KEY"`
	OpenSeaAPIKey      string `json:"OPENSEA_API_KEY"`
}

// SystemConfig is the full process configuration loaded from the JSON file
// pointed at by CONFIG_FILE.
type SystemConfig struct {
	Env           string                   `json:"NODE_ENV"`
	Host          string                   `json:"HOST"`
	Port          string                   `json:"PORT"`
	DatabaseURL   string                   `json:"DB_URL"`
	ClickhouseDSN string                   `json:"CLICKHOUSE_DSN"`
	Networks      map[string]NetworkConfig `json:"NETWORKS"`
}

// LoadConfig reads and validates the system configuration. The path comes
// from the CONFIG_FILE environment variable; a missing path or any schema
// violation is a boot failure, never a degraded start.
func LoadConfig() (*SystemConfig, error) {
	path := os.Getenv(ConfigFileEnv)
	if path == "" {
		return nil, ErrConfigFileNotSet
	}
	return LoadConfigFile(path)
}

// LoadConfigFile reads and validates the system configuration from path.
func LoadConfigFile(path string) (*SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("APPLICATION_BOOT::CONFIG_FILE_UNREADABLE: %w", err)
	}

	var cfg SystemConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("APPLICATION_BOOT::CONFIG_FILE_MALFORMED: %w", err)
	}

	if err := cfg.EnsureValidSchema(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureValidSchema validates the config object against declared constraints.
// Returns a joined error naming every violation.
func (c *SystemConfig) EnsureValidSchema() error {
	var violations []string

	if strings.TrimSpace(c.Env) == "" {
		violations = append(violations, "NODE_ENV must be a non-empty string")
	}
	if strings.TrimSpace(c.Host) == "" {
		violations = append(violations, "HOST must be a non-empty string")
	}
	if !validPort(c.Port) {
		violations = append(violations, "PORT must be a valid port number")
	}
	if !validURL(c.DatabaseURL, "postgres", "postgresql") {
		violations = append(violations, "DB_URL must be a valid postgres URL")
	}
	if !validURL(c.ClickhouseDSN, "clickhouse") {
		violations = append(violations, "CLICKHOUSE_DSN must be a valid clickhouse URL")
	}
	if len(c.Networks) == 0 {
		violations = append(violations, "NETWORKS must declare at least one chain")
	}
	for name, net := range c.Networks {
		if !validURL(net.RPCURL, "http", "https") {
			violations = append(violations, fmt.Sprintf("NETWORKS.%s.RPC_URL must be a valid http(s) URL", name))
		}
		if net.WSURL != "" && !validURL(net.WSURL, "ws", "wss") {
			violations = append(violations, fmt.Sprintf("NETWORKS.%s.WS_URL must be a valid ws(s) URL", name))
		}
		if strings.TrimSpace(net.SwapProgramAddress) == "" {
			violations = append(violations, fmt.Sprintf("NETWORKS.%s.SWAP_PROGRAM_ADDRESS must be a non-empty string", name))
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("APPLICATION_BOOT::CONFIG_SCHEMA_INVALID: %s", strings.Join(violations, "; "))
	}
	return nil
}

// Network returns the network section for a chain short-name.
func (c *SystemConfig) Network(name string) (NetworkConfig, bool) {
	net, ok := c.Networks[name]
	return net, ok
}

func validPort(port string) bool {
	if port == "" {
		return false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
	}
	n := 0
	for _, r := range port {
		n = n*10 + int(r-'0')
		if n > 65535 {
			return false
		}
	}
	return n > 0
}

func validURL(raw string, schemes ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return true
		}
	}
	return false
}
