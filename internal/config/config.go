// Copyright (c) 2025-2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/BiasedControls/snpx-client/snpx"
)

// Config defines the global configuration structure. The client tool
// and the simulator daemon read the same file and use their own
// sections.
type Config struct {
	Client ClientConfig `mapstructure:"client"`
	Sim    SimConfig    `mapstructure:"sim"`
	Log    LogConfig    `mapstructure:"log"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// ClientConfig defines how to reach a controller
type ClientConfig struct {
	Type    string        `mapstructure:"type"`    // "tcp", "serial"
	Tcp     TcpConfig     `mapstructure:"tcp"`     // Used if Type is "tcp"
	Serial  SerialConfig  `mapstructure:"serial"`  // Used if Type is "serial"
	Timeout time.Duration `mapstructure:"timeout"` // Per-interaction deadline
}

// SimConfig defines the simulator daemon
type SimConfig struct {
	Address     string            `mapstructure:"address"` // e.g. "0.0.0.0:60008"
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig defines data storage settings
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"` // File path for "file/mmap" type
}

// TcpConfig defines TCP settings
type TcpConfig struct {
	Address string `mapstructure:"address"` // e.g. "192.168.0.10:60008"
}

// SerialConfig defines serial line settings
type SerialConfig struct {
	Device      string        `mapstructure:"device"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"`
	Parity      string        `mapstructure:"parity"`
	StopBits    int           `mapstructure:"stop_bits"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"` // Close the port after inactivity
}

// LoadConfig loads configuration from file
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/snpx/")
		v.AddConfigPath("$HOME/.snpx")
		v.AddConfigPath(".")
	}

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("client.type", "tcp")
	v.SetDefault("client.tcp.address", fmt.Sprintf("127.0.0.1:%d", snpx.DefaultPort))
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("sim.address", fmt.Sprintf("0.0.0.0:%d", snpx.DefaultPort))
	v.SetDefault("sim.persistence.type", "memory")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	fixupSerial(&config.Client.Serial)

	return &config, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.BaudRate == 0 {
		s.BaudRate = 19200
	}
	if s.DataBits == 0 {
		s.DataBits = 8
	}
	if s.Parity == "" {
		s.Parity = "N"
	}
	if s.StopBits == 0 {
		s.StopBits = 1
	}
	if s.Timeout == 0 {
		s.Timeout = 500 * time.Millisecond
	}
}
