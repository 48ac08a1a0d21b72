package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/hush/pkg/config"
	"github.com/Veraticus/hush/pkg/intercept"
	"github.com/Veraticus/hush/pkg/logging"
	"github.com/Veraticus/hush/pkg/patterns"
	"github.com/Veraticus/hush/pkg/process"
	"github.com/Veraticus/hush/pkg/settings"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath string
		logLevel   string
		quiet      bool
		help       bool
	)

	ourArgs, rest := splitArgs(os.Args[1:])

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flag.BoolVar(&quiet, "quiet", false, "Do not turn command output into notifications")
	flag.BoolVarP(&help, "help", "h", false, "Show help message")

	if err := flag.CommandLine.Parse(ourArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if help || len(rest) == 0 {
		printUsage()
		if help {
			os.Exit(0)
		}
		os.Exit(2)
	}

	path := configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if quiet {
		cfg.Quiet = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	switch rest[0] {
	case "check":
		os.Exit(runCheck(cfg, os.Stdout, log))
	case "set":
		if err := runSet(path, cfg, os.Stdin, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	command, err := findCommand(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	args := rest[1:]

	deps, err := NewDependencies(cfg, path, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	app := NewApplication(deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Ensure terminal restoration on panic
	defer func() {
		if r := recover(); r != nil {
			_ = app.Stop()
			panic(r)
		}
	}()

	go func() {
		<-sigChan
		if err := app.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping process")
		}
		os.Exit(130)
	}()

	log.Debug().Str("command", command).Strs("args", args).Str("config", path).Msg("starting")

	if err := app.Run(command, args); err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, process.ErrAlreadyWrapped):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		case !errors.As(err, &exitErr):
			log.Error().Err(err).Msg("error running command")
		}
	}

	deps.Close()
	os.Exit(app.ExitCode())
}

// splitArgs separates our own flags from the command line to wrap. Parsing
// stops at the first argument that is not one of ours, so flags meant for the
// wrapped command pass through untouched.
func splitArgs(argv []string) (ours, rest []string) {
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--":
			return ours, argv[i+1:]
		case "--config", "--log-level":
			ours = append(ours, arg)
			if i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-") {
				ours = append(ours, argv[i+1])
				i++
			}
		case "--quiet", "--help", "-h":
			ours = append(ours, arg)
		default:
			if strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "--log-level=") {
				ours = append(ours, arg)
				continue
			}
			return ours, argv[i:]
		}
	}
	return ours, nil
}

// runCheck prints every configured pattern and whether it compiles. It
// returns the process exit code.
func runCheck(cfg *config.Config, out io.Writer, log zerolog.Logger) int {
	ps := patterns.Compile(cfg.HideNotificationPatterns, log.Level(zerolog.Disabled))
	if len(ps) == 0 {
		fmt.Fprintln(out, "no notification patterns configured")
		return 0
	}

	for _, p := range ps {
		if p.Valid() {
			fmt.Fprintf(out, "ok      %s\n", p.Source())
		} else {
			fmt.Fprintf(out, "invalid %s: %v\n", p.Source(), p.Err())
		}
	}

	invalid := patterns.Invalid(ps)
	if len(invalid) > 0 {
		fmt.Fprintf(out, "\n%d of %d patterns are invalid and will match nothing\n", len(invalid), len(ps))
		return 1
	}
	return 0
}

// runSet stores the pattern text read from in. A running hush notices the
// file change and reloads with the new patterns.
func runSet(path string, cfg *config.Config, in io.Reader, log zerolog.Logger) error {
	if path == "" {
		return fmt.Errorf("no config file; pass --config or set HUSH_CONFIG")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read patterns: %w", err)
	}
	value := strings.TrimRight(string(data), "\r\n")

	reg := settings.NewRegistry(path, cfg, log)
	if err := intercept.RegisterSettings(reg, nil); err != nil {
		return err
	}

	// Surface typos now rather than at the next start
	patterns.Compile(value, log)

	if err := reg.Set(intercept.SettingKey, value); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("notification patterns saved")
	return nil
}

func printUsage() {
	fmt.Println("hush - run a command and hide the notifications you never want to see")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  hush [OPTIONS] COMMAND [ARGS...]   run COMMAND in a terminal and announce its warnings and errors")
	fmt.Println("  hush [OPTIONS] check               list the configured hiding patterns and flag invalid ones")
	fmt.Println("  hush [OPTIONS] set < patterns.txt  replace the hiding patterns, one regular expression per line")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  HUSH_CONFIG                       Path to config file")
	fmt.Println("  HUSH_HIDE_NOTIFICATION_PATTERNS   Hiding patterns (use \\n between lines)")
	fmt.Println("  HUSH_RELOAD_DELAY                 Delay before reloading after a pattern change (default: 100ms)")
	fmt.Println("  HUSH_LOG_LEVEL                    Log level (default: info)")
	fmt.Println("  HUSH_QUIET                        Do not announce command output (true/false)")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/hush/config.yaml")
}

// findCommand resolves name on PATH, skipping our own binary so that hush can
// be installed under the name of the command it wraps.
func findCommand(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}

	ourPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get our executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(ourPath); err == nil {
		ourPath = resolved
	}

	pathEnv := os.Getenv("PATH")
	if pathEnv == "" {
		return "", fmt.Errorf("PATH environment variable is empty")
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		candidate := filepath.Join(dir, name)

		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() || info.Mode()&0o111 == 0 {
			continue
		}

		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil || resolved == ourPath {
			continue
		}

		return candidate, nil
	}

	return "", fmt.Errorf("%s not found in PATH (excluding hush itself)", name)
}
