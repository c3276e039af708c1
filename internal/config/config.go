// Package config loads daemon settings from an INI file, merged over
// defaults. Flags override whatever the file provides.
package config

import (
	"net"
	"time"

	"github.com/majestrate/configparser"
	"github.com/pkg/errors"

	"skipgraph/internal/model"
	"skipgraph/internal/node"
)

const sectionName = "skipgraph"

type Config struct {
	ListenAddr       model.Address
	Introducer       model.Address
	RequestTimeout   time.Duration
	Debug            bool
	Pprof            bool
	PprofAddr        string
	PprofAllowPublic bool
}

func Default() Config {
	return Config{
		ListenAddr:     model.NewAddress("127.0.0.1", "7946"),
		RequestTimeout: node.DefaultRequestTimeout,
	}
}

// Load reads the [skipgraph] section of the file at path over the defaults.
// Unknown keys are ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	conf, err := configparser.Read(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	sect, err := conf.Section(sectionName)
	if err != nil {
		return cfg, errors.Wrapf(err, "config is missing a [%s] section", sectionName)
	}
	opts := sect.Options()

	if v, ok := opts["listen"]; ok {
		addr, err := model.ParseAddress(v)
		if err != nil {
			return cfg, errors.Wrap(err, "parse listen address")
		}
		cfg.ListenAddr = addr
	}
	if v, ok := opts["introducer"]; ok && v != "" {
		addr, err := model.ParseAddress(v)
		if err != nil {
			return cfg, errors.Wrap(err, "parse introducer address")
		}
		cfg.Introducer = addr
	}
	if v, ok := opts["request_timeout"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, errors.Wrap(err, "parse request_timeout")
		}
		if d <= 0 {
			return cfg, errors.New("request_timeout must be positive")
		}
		cfg.RequestTimeout = d
	}
	if v, ok := opts["debug"]; ok {
		cfg.Debug = parseBool(v)
	}
	if v, ok := opts["pprof"]; ok {
		cfg.Pprof = parseBool(v)
	}
	if v, ok := opts["pprof_addr"]; ok && v != "" {
		if _, _, err := net.SplitHostPort(v); err != nil {
			return cfg, errors.Wrap(err, "parse pprof_addr")
		}
		cfg.PprofAddr = v
	}
	if v, ok := opts["pprof_allow_public"]; ok {
		cfg.PprofAllowPublic = parseBool(v)
	}
	return cfg, nil
}

func parseBool(v string) bool {
	return v == "1" || v == "true" || v == "yes"
}
