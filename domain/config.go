package domain

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultResolverURL = `http://localhost:8080`
	defaultTimeoutS    = 10
	defaultStoreTTLS   = 60
	defaultSweepS      = 15
	defaultCacheTTLS   = 300
)

type Args struct {
	Label      string
	Port       int
	CtrlPort   int
	ConfigFile string
	Verbose    bool
}

type Config struct {
	*Args
	Transport     string
	Hostname      string // endpoint advertised to peers
	Endpoint      string // endpoint the transport server binds to
	ResolverURL   string
	Timeout       time.Duration
	StoreTTL      time.Duration
	SweepInterval time.Duration
	TimeoutPolicy string
	CacheSize     int
	CacheTTL      time.Duration
	WaitHosts     []string
	LogLevel      string
}

// fileConfig is the yaml schema of the optional config file. Flag values
// take precedence over file values for the fields present in both.
type fileConfig struct {
	Label         string   `yaml:"label"`
	Port          int      `yaml:"port"`
	CtrlPort      int      `yaml:"ctrl_port"`
	Transport     string   `yaml:"transport"`
	Hostname      string   `yaml:"hostname"`
	ResolverURL   string   `yaml:"resolver_url"`
	TimeoutS      int      `yaml:"timeout_seconds"`
	StoreTTLS     int      `yaml:"store_ttl_seconds"`
	SweepS        int      `yaml:"sweep_interval_seconds"`
	TimeoutPolicy string   `yaml:"timeout_policy"`
	CacheSize     int      `yaml:"cache_size"`
	CacheTTLS     int      `yaml:"cache_ttl_seconds"`
	WaitHosts     []string `yaml:"wait_hosts"`
}

func NewConfig(args *Args) (*Config, error) {
	fc := fileConfig{
		Transport:     TrZmq,
		ResolverURL:   defaultResolverURL,
		TimeoutS:      defaultTimeoutS,
		StoreTTLS:     defaultStoreTTLS,
		SweepS:        defaultSweepS,
		TimeoutPolicy: PolicyRespond,
		CacheTTLS:     defaultCacheTTLS,
	}

	if args.ConfigFile != `` {
		data, err := os.ReadFile(args.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf(`reading config file failed - %v`, err)
		}

		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf(`parsing config file (%s) failed - %v`, args.ConfigFile, err)
		}
	}

	if args.Label == `` {
		args.Label = fc.Label
	}
	if args.Port == 0 {
		args.Port = fc.Port
	}
	if args.CtrlPort == 0 {
		args.CtrlPort = fc.CtrlPort
	}

	if args.Label == `` || args.Port == 0 {
		return nil, fmt.Errorf(`agent label and port must be provided via flags or the config file`)
	}

	if fc.Transport != TrZmq && fc.Transport != TrHTTP {
		return nil, fmt.Errorf(`unsupported transport (%s)`, fc.Transport)
	}

	if fc.TimeoutPolicy != PolicyRespond && fc.TimeoutPolicy != PolicyDrop {
		return nil, fmt.Errorf(`unsupported timeout policy (%s)`, fc.TimeoutPolicy)
	}

	hostname := fc.Hostname
	endpoint := ``
	switch fc.Transport {
	case TrZmq:
		if hostname == `` {
			hostname = `tcp://127.0.0.1:` + strconv.Itoa(args.Port)
		}
		endpoint = `tcp://0.0.0.0:` + strconv.Itoa(args.Port)
	case TrHTTP:
		if hostname == `` {
			hostname = `http://localhost:` + strconv.Itoa(args.Port)
		}
		endpoint = `:` + strconv.Itoa(args.Port)
	}

	return &Config{
		Args:          args,
		Transport:     fc.Transport,
		Hostname:      hostname,
		Endpoint:      endpoint,
		ResolverURL:   fc.ResolverURL,
		Timeout:       time.Duration(fc.TimeoutS) * time.Second,
		StoreTTL:      time.Duration(fc.StoreTTLS) * time.Second,
		SweepInterval: time.Duration(fc.SweepS) * time.Second,
		TimeoutPolicy: fc.TimeoutPolicy,
		CacheSize:     fc.CacheSize,
		CacheTTL:      time.Duration(fc.CacheTTLS) * time.Second,
		WaitHosts:     fc.WaitHosts,
		LogLevel:      `DEBUG`,
	}, nil
}
