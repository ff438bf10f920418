// Package config loads the settings shared by the service and the operator.
//
// The file is JSON by default (config.json beside the service module) and is
// decoded through HCL's JSON syntax, so an equivalent .hcl file works too.
// Every attribute is optional; a missing file yields Default().
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileName is the conventional config file name.
const FileName = "config.json"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the persisted configuration.
type Config struct {
	// Listener.
	IP      string `hcl:"ip,optional"`
	Port    int    `hcl:"port,optional"`
	Root    string `hcl:"root,optional"`
	APIOnly bool   `hcl:"apionly,optional"`

	// Target layout: base-relative roots and the manager singleton name.
	NameTableOffset   uint64 `hcl:"gnames_offset,optional"`
	ObjectArrayOffset uint64 `hcl:"gobjects_offset,optional"`
	ManagerName       string `hcl:"mapmanager_name,optional"`

	// Operator side.
	PollIntervalMS  int    `hcl:"poll_interval_ms,optional"`
	FetchTimeoutMS  int    `hcl:"fetch_timeout_ms,optional"`
	InjectTimeoutMS int    `hcl:"inject_timeout_ms,optional"`
	ProcessName     string `hcl:"process_name,optional"`
	ModuleName      string `hcl:"module_name,optional"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IP:                "0.0.0.0",
		Port:              7012,
		NameTableOffset:   0x4004A78,
		ObjectArrayOffset: 0x4008F80,
		ManagerName:       "MapManager",
		PollIntervalMS:    3000,
		FetchTimeoutMS:    30000,
		InjectTimeoutMS:   6000,
		ProcessName:       "FactoryGame-Win64-Shipping.exe",
		ModuleName:        "webmapsvc.dll",
	}
}

// Load reads path over Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Decode(path, src, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode parses src over cfg. The syntax is chosen by the extension of
// filename: .hcl for native syntax, JSON otherwise.
func Decode(filename string, src []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if filepath.Ext(filename) == ".hcl" {
		file, diags = parser.ParseHCL(src, filename)
	} else {
		file, diags = parser.ParseJSON(src, filename)
	}
	if diags.HasErrors() {
		return fmt.Errorf("config: failed to parse %s: %w", filename, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return fmt.Errorf("config: failed to decode %s: %w", filename, diags)
	}
	return nil
}

// Validate rejects settings the components cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.NameTableOffset == 0 {
		errs = append(errs, errors.New("gnames_offset is zero"))
	}
	if c.ObjectArrayOffset == 0 {
		errs = append(errs, errors.New("gobjects_offset is zero"))
	}
	if c.ManagerName == "" {
		errs = append(errs, errors.New("mapmanager_name is empty"))
	}
	if c.IP != "" && net.ParseIP(c.IP) == nil {
		errs = append(errs, fmt.Errorf("ip %q is not an address", c.IP))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ListenAddr is the service bind address.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// ClientHost is the host the operator dials: wildcard binds map to loopback.
func (c Config) ClientHost() string {
	ip := net.ParseIP(c.IP)
	if c.IP == "" || (ip != nil && ip.IsUnspecified()) {
		return "127.0.0.1"
	}
	return c.IP
}

// URL builds an operator URL for a service path.
func (c Config) URL(path string) string {
	return "http://" + net.JoinHostPort(c.ClientHost(), strconv.Itoa(c.Port)) + path
}

// WebRoot returns the static root, defaulting to web/ under dir.
func (c Config) WebRoot(dir string) string {
	if c.Root != "" {
		return c.Root
	}
	return filepath.Join(dir, "web")
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (c Config) PollInterval() time.Duration  { return ms(c.PollIntervalMS) }
func (c Config) FetchTimeout() time.Duration  { return ms(c.FetchTimeoutMS) }
func (c Config) InjectTimeout() time.Duration { return ms(c.InjectTimeoutMS) }
