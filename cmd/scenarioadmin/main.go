package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sophialabs/scenarioadmin/internal/app"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	return a.Run(context.Background())
}

// loadConfig applies defaults, then the YAML file, then GITHUB_TOKEN, then flags.
func loadConfig(args []string) (app.Config, error) {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("scenarioadmin", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	port := fs.Int("port", 0, "HTTP server port")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	backend := fs.String("backend", "", "content backend (github, filesystem)")
	root := fs.String("root", "", "root directory for the filesystem backend")
	owner := fs.String("owner", "", "GitHub repository owner")
	repo := fs.String("repo", "", "GitHub repository name")
	branch := fs.String("branch", "", "GitHub branch (default: repository default branch)")
	tokenFile := fs.String("token-file", "", "file holding the GitHub token, reloaded on change")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if err := app.LoadFile(*configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")

	// Only flags given explicitly override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "log-level":
			cfg.LogLevel = *logLevel
		case "backend":
			cfg.Backend = *backend
		case "root":
			cfg.RootDir = *root
		case "owner":
			cfg.GitHub.Owner = *owner
		case "repo":
			cfg.GitHub.Repo = *repo
		case "branch":
			cfg.GitHub.Branch = *branch
		case "token-file":
			cfg.GitHub.TokenFile = *tokenFile
		}
	})
	return cfg, nil
}
