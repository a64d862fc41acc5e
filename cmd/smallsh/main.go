package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/th3oth3rjak3/smallsh/internal/config"
	"github.com/th3oth3rjak3/smallsh/internal/shell"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to the shell config file")
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smallsh: error loading config: %v\n", err)
		os.Exit(1)
	}

	s, err := shell.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smallsh: error initializing shell: %v\n", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "smallsh: %v\n", err)
		os.Exit(1)
	}
}
