package config

// parseFlags overlays values from the global short flags:
//
//	-a string   base URL of the API server
//	-f string   session database file
//	-t int      request timeout in seconds
func parseFlags(cfg *Config, args []string) error {
	return newFlagSet(cfg).Parse(args)
}
