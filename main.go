package main

import (
	"flag"
	"log"

	"repx/internal/di"
	"repx/internal/structures"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	debug := flag.Bool("debug", false, "force debug logging")
	flag.Parse()

	flags := &structures.CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debug,
	}

	if _, err := di.InitApp(flags); err != nil {
		log.Fatalf("repx: %s", err)
	}
}
