package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/backkem/avdtp/pkg/stream"
	"github.com/pion/logging"
)

// Options holds the command-line flags.
type Options struct {
	// ReleaseTimeout bounds the wait for the peer to close after Release.
	ReleaseTimeout time.Duration

	// PeerCloses controls whether the simulated peer closes the transport
	// channel after accepting Release. When false, Release escalates to Abort.
	PeerCloses bool

	// Packets is the number of media packets the peer sends while streaming.
	Packets int

	// LinkDelay is the delay the simulated link adds to every packet.
	LinkDelay time.Duration

	// LinkJitter is added on top of LinkDelay, uniformly distributed.
	LinkJitter time.Duration

	// LogLevel is the pion log level for all scopes.
	LogLevel logging.LogLevel
}

// DefaultOptions returns Options with the default values.
func DefaultOptions() Options {
	return Options{
		ReleaseTimeout: stream.DefaultReleaseTimeout,
		PeerCloses:     true,
		Packets:        5,
		LogLevel:       logging.LogLevelInfo,
	}
}

// ParseFlags parses the command-line flags and returns Options.
//
//	-release-timeout  wait for the peer to close after Release (default: 3s)
//	-peer-closes      peer closes the channel after Release (default: true)
//	-packets          media packets sent while streaming (default: 5)
//	-link-delay       delay added to every packet on the link (default: 0)
//	-link-jitter      extra random delay on top of -link-delay (default: 0)
//	-log-level        error|warn|info|debug|trace (default: info)
func ParseFlags() Options {
	defaults := DefaultOptions()
	o := defaults

	flag.DurationVar(&o.ReleaseTimeout, "release-timeout", defaults.ReleaseTimeout, "wait for the peer to close after Release")
	flag.BoolVar(&o.PeerCloses, "peer-closes", defaults.PeerCloses, "peer closes the transport channel after Release")
	flag.IntVar(&o.Packets, "packets", defaults.Packets, "media packets sent while streaming")
	flag.DurationVar(&o.LinkDelay, "link-delay", defaults.LinkDelay, "delay added to every packet on the link")
	flag.DurationVar(&o.LinkJitter, "link-jitter", defaults.LinkJitter, "extra random delay on top of -link-delay")
	flag.Func("log-level", "error|warn|info|debug|trace (default: info)", func(s string) error {
		level, err := parseLogLevel(s)
		if err != nil {
			return err
		}
		o.LogLevel = level
		return nil
	})

	flag.Parse()
	return o
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
