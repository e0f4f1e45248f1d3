// Copyright (c) 2025-2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	snpxclient "github.com/BiasedControls/snpx-client"
	"github.com/BiasedControls/snpx-client/internal/config"
	"github.com/BiasedControls/snpx-client/snpx"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "Configuration file path.")
	address := pflag.StringP("address", "a", "", "Controller address, overrides the config file.")
	transportType := pflag.StringP("transport", "t", "", "Transport type (tcp, serial).")
	timeout := pflag.DurationP("timeout", "W", 0, "Per-interaction timeout.")
	logLevel := pflag.StringP("log-level", "v", "", "Log verbosity (debug, info, warn, error).")
	kind := pflag.StringP("kind", "k", "real", "Variable kind (int, real, string).")
	scale := pflag.Float64P("scale", "s", 0, "Scale divisor for int variables.")
	interval := pflag.DurationP("interval", "i", time.Second, "Poll interval for watch.")
	pflag.Usage = usage
	pflag.Parse()

	// Load Configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Client.Tcp.Address = *address
	}
	if *transportType != "" {
		cfg.Client.Type = *transportType
	}
	if *timeout != 0 {
		cfg.Client.Timeout = *timeout
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	setupLogger(cfg.Log)

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if err := run(cfg, args, *kind, *scale, *interval); err != nil {
		slog.Error("Command failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, kind string, scale float64, interval time.Duration) error {
	channel, err := snpxclient.NewChannel(cfg.Client)
	if err != nil {
		return err
	}
	client := snpxclient.NewClient(channel)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		return err
	}

	switch args[0] {
	case "read":
		return readSignals(client, args[1:])
	case "write":
		return writeSignals(client, args[1:])
	case "pos":
		return readPosition(client, args[1:])
	case "watch":
		return watchPosition(client, args[1:], interval)
	case "get":
		return getVariable(client, args[1:], kind, scale)
	case "set":
		return setVariable(client, args[1:], kind, scale)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func readSignals(client *snpxclient.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: read <di|do|ui|uo> <start> <count>")
	}
	block, err := signalBlock(args[0])
	if err != nil {
		return err
	}
	start, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad start index %q", args[1])
	}
	count, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("bad count %q", args[2])
	}

	values, err := client.ReadSignals(block, count, start)
	if err != nil {
		return err
	}
	name := strings.ToUpper(args[0])
	for i, v := range values {
		bit := 0
		if v {
			bit = 1
		}
		fmt.Printf("%s[%d] = %d\n", name, start+i, bit)
	}
	return nil
}

func writeSignals(client *snpxclient.Client, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: write <di|do|ui|uo> <start> <bit>...")
	}
	block, err := signalBlock(args[0])
	if err != nil {
		return err
	}
	start, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad start index %q", args[1])
	}
	values := make([]bool, len(args)-2)
	for i, arg := range args[2:] {
		switch arg {
		case "0", "off":
			values[i] = false
		case "1", "on":
			values[i] = true
		default:
			return fmt.Errorf("bad signal value %q", arg)
		}
	}
	return client.WriteSignals(block, values, start)
}

func readPosition(client *snpxclient.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pos <cartesian|joint>")
	}

	var block snpx.PositionBlock
	switch args[0] {
	case "cartesian":
		block = snpx.CartesianPosition
	case "joint":
		block = snpx.JointPosition
	default:
		return fmt.Errorf("unknown position kind %q", args[0])
	}

	axes, err := client.ReadPosition(block)
	if err != nil {
		return err
	}
	for i, v := range axes {
		fmt.Printf("%-3s %10.3f\n", axisLabel(args[0], i), v)
	}
	return nil
}

// watchPosition polls the position once per interval until interrupted.
func watchPosition(client *snpxclient.Client, args []string, interval time.Duration) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: watch <cartesian|joint>")
	}

	var block snpx.PositionBlock
	switch args[0] {
	case "cartesian":
		block = snpx.CartesianPosition
	case "joint":
		block = snpx.JointPosition
	default:
		return fmt.Errorf("unknown position kind %q", args[0])
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		axes, err := client.ReadPosition(block)
		if err != nil {
			return err
		}
		parts := make([]string, len(axes))
		for i, v := range axes {
			parts[i] = fmt.Sprintf("%s=%.3f", axisLabel(args[0], i), v)
		}
		fmt.Println(strings.Join(parts, " "))

		select {
		case <-sig:
			return nil
		case <-ticker.C:
		}
	}
}

func getVariable(client *snpxclient.Client, args []string, kind string, scale float64) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get <name> [--kind int|real|string] [--scale N]")
	}
	typ, err := variableType(kind, scale)
	if err != nil {
		return err
	}
	name := args[0]

	if typ.Kind == snpx.String {
		s, err := client.ReadStringVariable(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %q\n", name, s)
		return nil
	}
	v, err := client.ReadNumericVariable(name, typ)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %g\n", name, v)
	return nil
}

func setVariable(client *snpxclient.Client, args []string, kind string, scale float64) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <name> <value> [--kind int|real|string] [--scale N]")
	}
	typ, err := variableType(kind, scale)
	if err != nil {
		return err
	}
	name := args[0]

	if typ.Kind == snpx.String {
		if err := client.WriteStringVariable(name, args[1]); err != nil {
			return err
		}
		fmt.Printf("%s = %q\n", name, args[1])
		return nil
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad numeric value %q", args[1])
	}
	if err := client.WriteNumericVariable(name, typ, v); err != nil {
		return err
	}
	fmt.Printf("%s = %g\n", name, v)
	return nil
}

func signalBlock(name string) (snpx.SignalBlock, error) {
	switch name {
	case "di":
		return snpx.DigitalIn, nil
	case "do":
		return snpx.DigitalOut, nil
	case "ui":
		return snpx.UserIn, nil
	case "uo":
		return snpx.UserOut, nil
	}
	return snpx.SignalBlock{}, fmt.Errorf("unknown signal block %q", name)
}

func variableType(kind string, scale float64) (snpx.VariableType, error) {
	switch kind {
	case "int":
		return snpx.IntType(scale), nil
	case "real", "":
		return snpx.RealType(), nil
	case "string", "str":
		return snpx.StringType(), nil
	}
	return snpx.VariableType{}, fmt.Errorf("unknown variable kind %q", kind)
}

func axisLabel(kind string, i int) string {
	if kind == "joint" {
		return fmt.Sprintf("J%d", i+1)
	}
	cartesian := []string{"X", "Y", "Z", "W", "P", "R"}
	if i < len(cartesian) {
		return cartesian[i]
	}
	return fmt.Sprintf("E%d", i-len(cartesian)+1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: snpxcli [flags] <command> [args]

Commands:
  read <di|do|ui|uo> <start> <count>   Read digital or user signals
  write <di|do|ui|uo> <start> <bit>... Write digital or user signals
  pos <cartesian|joint>                Read the current position
  watch <cartesian|joint>              Poll the position (see --interval)
  get <name>                           Read a variable (see --kind, --scale)
  set <name> <value>                   Write a variable (see --kind, --scale)

Flags:
`)
	pflag.PrintDefaults()
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stderr: %v\n", err)
			handler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
