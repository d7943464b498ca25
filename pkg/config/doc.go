// Package config loads configuration structs from environment variables.
//
// Config structs live beside the packages they configure and declare their
// variables with `env` struct tags:
//
//	type Config struct {
//		Interval time.Duration `env:"NOTIFIER_RUN_INTERVAL" envDefault:"1m"`
//	}
//
//	var cfg notifier.Config
//	if err := config.Load(&cfg); err != nil { ... }
//
// A .env file in the working directory is loaded once, if present, before the
// first parse. Each config type is parsed once per process and cached.
package config
