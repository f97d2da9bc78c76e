// clockctl drives the LCD clock over its USB control link.
//
//	clockctl                      interactive prompt
//	clockctl fill D3 red          one command, then exit
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lcdclock/host/cmd/clockctl/config"
	"lcdclock/host/link"
	"lcdclock/host/serial"
)

var (
	configPath = flag.String("config", "clockctl.yaml", "path to clockctl.yaml")
	device     = flag.String("device", "", "serial device (overrides config)")
	verbose    = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	if *device != "" {
		cfg.Device = *device
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level; using info")
		level = zerolog.InfoLevel
	}
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	port, err := serial.Open(serial.Config{Device: cfg.Device, Baud: cfg.Baud, ReadTimeout: cfg.Timeouts.Read()})
	if err != nil {
		log.Fatal().Err(err).Str("device", cfg.Device).Msg("open failed")
	}

	client := link.NewClient(link.NewTransport(port, log.Logger), link.Options{
		AckTimeout:      cfg.Timeouts.Ack(),
		ResponseTimeout: cfg.Timeouts.Response(),
		Logger:          log.Logger,
	})
	defer client.Close()

	if err := client.Identify(); err != nil {
		log.Fatal().Err(err).Msg("identify failed")
	}
	log.Info().Str("device", cfg.Device).Int("dictionary", len(client.Dictionary())).Msg("connected")

	s, err := newSession(client, os.Stdout, cfg.Presets)
	if err != nil {
		log.Fatal().Err(err).Msg("bad preset in config")
	}

	if flag.NArg() > 0 {
		if err := s.exec(flag.Args()); err != nil {
			log.Error().Err(err).Msg(flag.Arg(0))
			os.Exit(1)
		}
		return
	}
	repl(s)
}

func repl(s *session) {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		args, err := shlex.Split(in.Text())
		if err != nil {
			log.Error().Err(err).Msg("parse")
			continue
		}
		if len(args) > 0 {
			switch strings.ToLower(args[0]) {
			case "quit", "exit", "q":
				return
			}
		}
		if err := s.exec(args); err != nil {
			log.Error().Err(err).Msg(args[0])
		}
	}
}
