package config

import (
	"flag"
	"os"
	"time"

	"github.com/mzarins/invsync/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-e string   server base URL (e.g., "http://localhost:3000")
//	-f string   local replica database file
//	-r int      request timeout, seconds
//	-i int      connectivity ping interval, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-e", "-f", "-r", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "e", config.ServerEndpointAddr, "server base URL")
	fs.StringVar(&config.DatabaseDSN, "f", config.DatabaseDSN, "local replica database file")

	requestTimeout := fs.Int("r", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	pingInterval := fs.Int("i", int(config.PingInterval.Seconds()), "ping interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	config.PingInterval = time.Duration(*pingInterval) * time.Second
}
