package command

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/pkg/secret"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Token operations against the configured backend",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Store a new token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "Token key (generated when empty)",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Lifetime from now",
						Value: time.Hour,
					},
					&cli.TimestampFlag{
						Name:   "expires",
						Usage:  "Absolute expiry (RFC 3339), overrides --ttl",
						Layout: time.RFC3339,
					},
					&cli.StringFlag{
						Name:  "secret",
						Usage: "Plaintext secret to attach",
					},
					&cli.BoolFlag{
						Name:  "generate-secret",
						Usage: "Attach a random secret and print it once",
					},
					&cli.StringSliceFlag{
						Name:  "claim",
						Usage: "Claim as name=value; JSON values are decoded (repeatable)",
					},
				},
				Action: tokenIssue,
			},
			{
				Name:      "confirm",
				Usage:     "Check a token's secret",
				ArgsUsage: "KEY",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "secret",
						Usage: "Secret to check (read from stdin when empty)",
					},
				},
				Action: tokenConfirm,
			},
			{
				Name:      "fetch",
				Aliases:   []string{"get"},
				Usage:     "Read a token without checking its secret",
				ArgsUsage: "KEY",
				Action:    tokenFetch,
			},
			{
				Name:      "revoke",
				Aliases:   []string{"rm"},
				Usage:     "Delete one or more tokens",
				ArgsUsage: "KEY...",
				Action:    tokenRevoke,
			},
		},
	}
}

// parseClaims turns name=value pairs into claims. A value that is valid
// JSON is decoded; anything else is kept as a string.
func parseClaims(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	claims := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --claim %q, want name=value", p)
		}
		if domain.IsReservedField(name) {
			return nil, fmt.Errorf("claim name %q is reserved", name)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		claims[name] = v
	}
	return claims, nil
}

func tokenIssue(c *cli.Context) error {
	if c.IsSet("secret") && c.Bool("generate-secret") {
		return errors.New("--secret and --generate-secret are mutually exclusive")
	}

	claims, err := parseClaims(c.StringSlice("claim"))
	if err != nil {
		return err
	}

	t := &domain.Token{
		Key:    c.String("key"),
		Secret: c.String("secret"),
		Claims: claims,
	}
	if ts := c.Timestamp("expires"); ts != nil {
		t.Expires = ts.UnixMilli()
	} else {
		if c.Duration("ttl") <= 0 {
			return errors.New("--ttl must be positive")
		}
		t.Expires = time.Now().Add(c.Duration("ttl")).UnixMilli()
	}
	if t.Key == "" {
		if t.Key, err = domain.GenerateKey(); err != nil {
			return err
		}
	}

	generated := ""
	if c.Bool("generate-secret") {
		if generated, err = secret.Generate(secret.DefaultGenerateLength); err != nil {
			return err
		}
		t.Secret = generated
	}

	store, release, err := openStore(c)
	if err != nil {
		return err
	}
	defer release()

	res, err := store.StoreToken(c.Context, t)
	if err != nil {
		return err
	}
	if res.Degraded {
		return printDegraded(c)
	}

	if generated == "" {
		return printResult(c, res.Token)
	}
	// The generated secret is shown once, alongside the stored fields.
	view, err := tokenView(res.Token)
	if err != nil {
		return err
	}
	view[domain.FieldSecret] = generated
	return printResult(c, view)
}

// tokenView returns the token's flat wire fields as a map.
func tokenView(t *domain.Token) (map[string]any, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func tokenConfirm(c *cli.Context) error {
	key := c.Args().First()
	if key == "" || c.NArg() != 1 {
		return errors.New("usage: token confirm [--secret S] KEY")
	}

	supplied := c.String("secret")
	if !c.IsSet("secret") {
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no secret given on --secret or stdin")
		}
		supplied = strings.TrimRight(line, "\r\n")
	}

	store, release, err := openStore(c)
	if err != nil {
		return err
	}
	defer release()

	res, err := store.ConfirmToken(c.Context, key, supplied)
	if err != nil {
		return err
	}
	if res.Degraded {
		return printDegraded(c)
	}
	return printResult(c, res.Token)
}

func tokenFetch(c *cli.Context) error {
	key := c.Args().First()
	if key == "" || c.NArg() != 1 {
		return errors.New("usage: token fetch KEY")
	}

	store, release, err := openStore(c)
	if err != nil {
		return err
	}
	defer release()

	res, err := store.FetchToken(c.Context, key)
	if err != nil {
		return err
	}
	if res.Degraded {
		return printDegraded(c)
	}
	return printResult(c, res.Token)
}

func tokenRevoke(c *cli.Context) error {
	keys := c.Args().Slice()
	if len(keys) == 0 {
		return errors.New("usage: token revoke KEY...")
	}

	store, release, err := openStore(c)
	if err != nil {
		return err
	}
	defer release()

	res, err := store.DeleteTokens(c.Context, keys...)
	if err != nil {
		return err
	}
	if res.Degraded {
		return printDegraded(c)
	}
	return printResult(c, map[string]int{"deleted": res.Deleted})
}
