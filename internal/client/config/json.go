package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mzarins/invsync/internal/flagx"
	"github.com/mzarins/invsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	PingInterval       timex.Duration `json:"ping_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is present no JSON is loaded. Read or unmarshal errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	config.PingInterval = time.Duration(c.PingInterval.Duration)
}
