package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goflickr/goflickr/client"
	"github.com/goflickr/goflickr/formdata"
	"github.com/goflickr/goflickr/pkg/transport"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "flickrctl",
		Usage:   "command-line helper for the Flickr REST API",
		Version: transport.UserAgent(),
	}
	app.Flags = globalFlags()
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "auth-url",
			Usage:  "obtain a request token and print the authorization URL",
			Action: runAuthURL,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "callback",
					Usage: "OAuth callback URL (default: out-of-band)",
				},
				&cli.StringFlag{
					Name:  "perms",
					Value: "read",
					Usage: "requested permissions (read, write, delete)",
				},
			},
		},
		&cli.Command{
			Name:      "auth-exchange",
			Usage:     "exchange a verifier for an access token, using the request token from auth-url",
			ArgsUsage: "<verifier>",
			Action:    runAuthExchange,
		},
		&cli.Command{
			Name:      "get",
			Usage:     "read-only API call (HTTP GET)",
			ArgsUsage: "<method> [key=value]...",
			Action:    runGet,
		},
		&cli.Command{
			Name:      "post",
			Usage:     "write API call (HTTP POST)",
			ArgsUsage: "<method> [key=value]...",
			Action:    runPost,
		},
		&cli.Command{
			Name:      "upload",
			Usage:     "upload a new photo",
			ArgsUsage: "<file> [key=value]...",
			Action:    runUpload,
		},
		&cli.Command{
			Name:      "replace",
			Usage:     "replace the content of an existing photo",
			ArgsUsage: "<file> <photo_id> [key=value]...",
			Action:    runReplace,
		},
	}
	return app.Run(args)
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// Global flags. Credentials and endpoints default to the FLICKR_* environment (see [client.LoadConfig]); flags override it.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "application API key (default: $FLICKR_API_KEY)",
		},
		&cli.StringFlag{
			Name:  "api-secret",
			Usage: "application secret (default: $FLICKR_API_SECRET)",
		},
		&cli.StringFlag{
			Name:  "oauth-token",
			Usage: "OAuth access token, or request token for auth-exchange (default: $FLICKR_OAUTH_TOKEN)",
		},
		&cli.StringFlag{
			Name:  "oauth-token-secret",
			Usage: "secret for the OAuth token (default: $FLICKR_OAUTH_TOKEN_SECRET)",
		},
		&cli.StringFlag{
			Name:  "api-base",
			Usage: "URL prefix for the REST and upload endpoints (default: $FLICKR_API_BASE, or " + client.DefaultAPIBase + ")",
		},
		&cli.StringFlag{
			Name:  "oauth-base",
			Usage: "URL prefix for the OAuth endpoints (default: $FLICKR_OAUTH_BASE, or " + client.DefaultOAuthBase + ")",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout (default: $FLICKR_TIMEOUT, or " + transport.DefaultTimeout.String() + ")",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "warn",
			EnvVars: []string{"FLICKRCTL_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
	}
}

// Environment config, with any explicitly set flags on top.
func clientConfig(cctx *cli.Context) (client.Config, error) {
	cfg, err := client.LoadConfig()
	if err != nil {
		return cfg, err
	}
	for flag, field := range map[string]*string{
		"api-key":            &cfg.ConsumerKey,
		"api-secret":         &cfg.ConsumerSecret,
		"oauth-token":        &cfg.Token,
		"oauth-token-secret": &cfg.TokenSecret,
		"api-base":           &cfg.APIBase,
		"oauth-base":         &cfg.OAuthBase,
	} {
		if cctx.IsSet(flag) {
			*field = cctx.String(flag)
		}
	}
	if cctx.IsSet("timeout") {
		cfg.Timeout = cctx.Duration("timeout")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = transport.DefaultTimeout
	}
	return cfg, nil
}

func configClient(cctx *cli.Context) (*client.APIClient, error) {
	logger := configLogger(cctx, os.Stderr)

	cfg, err := clientConfig(cctx)
	if err != nil {
		return nil, err
	}
	c, err := client.NewAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	c.Client = transport.NewClient(
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(logger),
	)
	c.Logger = logger
	return c, nil
}

// Parses "key=value" arguments into API parameters. Later duplicates win.
func parseParamArgs(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value parameter, got: %q", a)
		}
		params[k] = v
	}
	return params, nil
}

func printResult(res *client.APIResult) error {
	out, err := json.MarshalIndent(res.Payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runAuthURL(cctx *cli.Context) error {
	ctx := cctx.Context

	c, err := configClient(cctx)
	if err != nil {
		return err
	}
	tokens, err := c.GetAuthenticationTokens(ctx, cctx.String("callback"), cctx.String("perms"))
	if err != nil {
		return err
	}
	fmt.Printf("FLICKR_OAUTH_TOKEN=%s\n", tokens.Token)
	fmt.Printf("FLICKR_OAUTH_TOKEN_SECRET=%s\n", tokens.TokenSecret)
	fmt.Println()
	fmt.Println("authorize at:", tokens.AuthorizeURL)
	return nil
}

func runAuthExchange(cctx *cli.Context) error {
	ctx := cctx.Context

	verifier := cctx.Args().First()
	if verifier == "" {
		fmt.Fprint(os.Stderr, "verifier: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		verifier = strings.TrimSpace(line)
	}

	c, err := configClient(cctx)
	if err != nil {
		return err
	}
	tokens, err := c.GetAuthTokens(ctx, verifier)
	if err != nil {
		return err
	}
	fmt.Printf("FLICKR_OAUTH_TOKEN=%s\n", tokens.Token)
	fmt.Printf("FLICKR_OAUTH_TOKEN_SECRET=%s\n", tokens.TokenSecret)
	if nsid := tokens.Values.Get("user_nsid"); nsid != "" {
		fmt.Printf("# authorized as %s (%s)\n", tokens.Values.Get("username"), nsid)
	}
	return nil
}

func runGet(cctx *cli.Context) error {
	return runCall(cctx, false)
}

func runPost(cctx *cli.Context) error {
	return runCall(cctx, true)
}

func runCall(cctx *cli.Context, post bool) error {
	ctx := cctx.Context

	method := cctx.Args().First()
	if method == "" {
		return fmt.Errorf("need API method name as first argument")
	}
	params, err := parseParamArgs(cctx.Args().Tail())
	if err != nil {
		return err
	}
	c, err := configClient(cctx)
	if err != nil {
		return err
	}

	var res *client.APIResult
	if post {
		res, err = c.Post(ctx, method, params)
	} else {
		res, err = c.Get(ctx, method, params)
	}
	if err != nil {
		return err
	}
	return printResult(res)
}

func runUpload(cctx *cli.Context) error {
	ctx := cctx.Context

	path := cctx.Args().First()
	if path == "" {
		return fmt.Errorf("need file path as first argument")
	}
	params, err := parseParamArgs(cctx.Args().Tail())
	if err != nil {
		return err
	}
	file, err := formdata.FileFromPath(path)
	if err != nil {
		return err
	}
	c, err := configClient(cctx)
	if err != nil {
		return err
	}
	res, err := c.Upload(ctx, params, file)
	if err != nil {
		return err
	}
	return printResult(res)
}

func runReplace(cctx *cli.Context) error {
	ctx := cctx.Context

	if cctx.Args().Len() < 2 {
		return fmt.Errorf("need file path and photo ID as arguments")
	}
	path := cctx.Args().Get(0)
	params, err := parseParamArgs(cctx.Args().Slice()[2:])
	if err != nil {
		return err
	}
	params["photo_id"] = cctx.Args().Get(1)

	file, err := formdata.FileFromPath(path)
	if err != nil {
		return err
	}
	c, err := configClient(cctx)
	if err != nil {
		return err
	}
	res, err := c.Replace(ctx, params, file)
	if err != nil {
		return err
	}
	return printResult(res)
}
