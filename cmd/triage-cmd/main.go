// main.go — Entry point for the triage-cmd CLI binary.
// Resolves which outcome a UI action produced (results table, no-data
// message or a failing background request) and collects paginated API data
// for cross-validation.
//
// Usage: triage-cmd <command> [options] [--flags]
//
// Exit codes:
//   0 = table or no-data resolved, collection complete
//   1 = triage error, timeout, pagination guard tripped, runtime error
//   2 = usage error (missing args, invalid flags, bad configuration)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dev-console/triage/cmd/triage-cmd/commands"
	"github.com/dev-console/triage/cmd/triage-cmd/config"
	"github.com/dev-console/triage/cmd/triage-cmd/output"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

const usageText = `triage-cmd — resolve UI action outcomes and collect paginated API data

Usage:
  triage-cmd <command> [options] [--flags]

Commands:
  resolve      Perform a browser action and report which outcome appeared first
  collect      Page through a JSON API until it is exhausted

Resolve Options:
  --page <url>               Page to navigate to (the action)
  --click <css>              Element to click after navigating (the action)
  --pattern <re|glob:...>    URL pattern of the background request to watch
  --table <css>              Selector of the results table
  --no-data <css>            Selector of the "no data" message
  --error-indicator <css>    Selector of a UI error banner (excludes --pattern)
  --api-url <url>            Cross-validate table rows against this API
  --key-column <n>           0-based table column holding the row key (default: 0)

Collect Options:
  --api-url <url>            Paginated endpoint (GET url?page=i&size=n)
  --items-field <name>       JSON field holding the page items (default: items)
  --key-field <name>         Item field holding the natural key (default: id)
  --page-param <name>        Page index query parameter (default: page)
  --size-param <name>        Page size query parameter (default: size)

Global Flags:
  --format <human|json|csv>  Output format (default: human)
  --log-level <level>        debug, info, warn, error (default: info)
  --devtools-url <ws-url>    Attach to a running browser instead of launching one
  --poll-interval <ms>       Resolver polling interval (default: 200)
  --timeout <ms>             Resolver timeout (default: 30000)
  --page-size <n>            Collector page size (default: 1000)
  --max-pages <n>            Collector fetch ceiling (default: 10000)
  --fetch-retries <n>        Retries per failed page fetch (default: 0)
  --allowed-statuses <list>  Extra non-failure statuses, comma-separated (200,304 always allowed)
  --version                  Show version
  --help                     Show this help

Examples:
  triage-cmd resolve --page "https://app.example.com/search?q=x" \
      --pattern ".*/api/search.*" --table "#results" --no-data ".empty-state"
  triage-cmd collect --api-url "https://api.example.com/v1/orders" --key-field orderId
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the main entry point, separated for testability.
// Returns the exit code.
func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}

	// Handle --version and --help before anything else
	for _, arg := range args {
		if arg == "--version" || arg == "-v" {
			fmt.Printf("triage-cmd %s\n", version)
			return 0
		}
		if arg == "--help" || arg == "-h" {
			fmt.Print(usageText)
			return 0
		}
	}

	command := args[0]
	if command == "help" {
		fmt.Print(usageText)
		return 0
	}

	flags, remaining, err := extractGlobalFlags(args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		return 1
	}

	cfg, err := config.Load(cwd, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration: %v\n", err)
		return 2
	}

	log := commands.NewLogger(cfg, os.Stderr)
	formatter := output.GetFormatter(cfg.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var result *output.Result
	switch command {
	case "resolve":
		opts, err := commands.ResolveArgs(remaining)
		if err != nil {
			return usageError(err)
		}
		browserCtx, sess, closeBrowser, err := commands.OpenBrowser(ctx, cfg, opts, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer closeBrowser()
		result = commands.RunResolve(browserCtx, cfg, opts, sess, log)
	case "collect":
		api, err := commands.CollectArgs(remaining)
		if err != nil {
			return usageError(err)
		}
		result = commands.RunCollect(ctx, cfg, api, log)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q. Valid commands: resolve, collect\n", command)
		return 2
	}

	if err := formatter.Format(os.Stdout, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: format output: %v\n", err)
		return 1
	}

	if !result.Success {
		return 1
	}
	return 0
}

func usageError(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
	fmt.Fprint(os.Stderr, usageText)
	if errors.Is(err, commands.ErrUsage) {
		return 2
	}
	return 1
}

// extractGlobalFlags extracts global flags from args and returns FlagOverrides + remaining args.
func extractGlobalFlags(args []string) (*config.FlagOverrides, []string, error) {
	flags := &config.FlagOverrides{}
	remaining := args

	strFlags := []struct {
		name string
		dst  **string
	}{
		{"--format", &flags.Format},
		{"--log-level", &flags.LogLevel},
		{"--devtools-url", &flags.DevToolsURL},
	}
	for _, f := range strFlags {
		var val string
		val, remaining = extractFlag(remaining, f.name)
		if val != "" {
			*f.dst = &val
		}
	}

	intFlags := []struct {
		name string
		dst  **int
	}{
		{"--poll-interval", &flags.PollIntervalMS},
		{"--timeout", &flags.ResolveTimeoutMS},
		{"--page-size", &flags.PageSize},
		{"--max-pages", &flags.MaxPages},
		{"--fetch-retries", &flags.FetchRetries},
	}
	for _, f := range intFlags {
		var val string
		val, remaining = extractFlag(remaining, f.name)
		if val == "" {
			continue
		}
		n, ok := parseInt(val)
		if !ok {
			return nil, nil, fmt.Errorf("%s must be a non-negative integer, got %q", f.name, val)
		}
		*f.dst = &n
	}

	var statuses string
	statuses, remaining = extractFlag(remaining, "--allowed-statuses")
	if statuses != "" {
		codes, err := config.ParseStatusList(statuses)
		if err != nil {
			return nil, nil, fmt.Errorf("--allowed-statuses: %w", err)
		}
		flags.AllowedStatuses = codes
	}

	return flags, remaining, nil
}

// extractFlag removes a flag and its value from args, returning the value and remaining args.
func extractFlag(args []string, flag string) (string, []string) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			val := args[i+1]
			remaining := make([]string, 0, len(args)-2)
			remaining = append(remaining, args[:i]...)
			remaining = append(remaining, args[i+2:]...)
			return val, remaining
		}
	}
	return "", args
}

// parseInt parses a string as a non-negative integer.
func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
