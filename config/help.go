package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
rider-agent - headless delivery rider client

Usage:
  rider-agent [-config-path config.yaml]

Configuration is read from the YAML file, then overridden by environment
variables (API_ENDPOINT, FIREBASE_API_KEY, FIREBASE_PROJECT_ID, MAPBOX_TOKEN,
CONTROL_HOST, CONTROL_PORT, STATE_DIR, LOG_LEVEL, POLLING_*).
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the non-secret parts of the loaded configuration.
func PrintConfig(cfg *Config) {
	fmt.Printf("api endpoint:  %s\n", cfg.API.Endpoint)
	fmt.Printf("control addr:  %s\n", cfg.Control.Addr())
	fmt.Printf("state dir:     %s\n", cfg.State.Dir)
	fmt.Printf("log level:     %s\n", cfg.Log.Level)
}
