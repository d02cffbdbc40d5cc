package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	bybit "signal_trader/internal/modules/bybit_client/service"
	webhook "signal_trader/internal/modules/webhook/service"
	"signal_trader/internal/runner"
)

func main() {
	app := &cli.App{
		Name:  "signalctl",
		Usage: "operator tool for the signal trader",
		Commands: []*cli.Command{
			classifyCommand,
			sendCommand,
			rulesCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var classifyCommand = &cli.Command{
	Name:      "classify",
	Usage:     "print the intent for an action name",
	ArgsUsage: "<action>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "synonyms", Usage: "synonyms yaml file", EnvVars: []string{"WEBHOOK_SYNONYMS_FILE"}},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("expected exactly one action", 2)
		}
		syn, err := webhook.LoadSynonyms(c.String("synonyms"))
		if err != nil {
			return err
		}
		action := syn.Resolve(c.Args().First())
		intent, err := runner.Classify(action)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Fprintf(c.App.Writer, "%s -> %s (fraction %s, reduce-only %t)\n",
			action, intent, intent.Fraction(), intent.IsClose())
		return nil
	},
}

var sendCommand = &cli.Command{
	Name:  "send",
	Usage: "post a signal to a running webhook",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "url", Value: "http://localhost:8000/webhook"},
		&cli.StringFlag{Name: "action", Required: true},
		&cli.StringFlag{Name: "symbol"},
		&cli.StringFlag{Name: "secret", EnvVars: []string{"WEBHOOK_SECRET"}},
		&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second},
	},
	Action: func(c *cli.Context) error {
		body, err := sonic.Marshal(map[string]string{
			"action":     c.String("action"),
			"symbol":     c.String("symbol"),
			"passphrase": c.String("secret"),
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.String("url"), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return errors.Wrap(err, "post signal")
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%d %s\n", resp.StatusCode, raw)
		if id := resp.Header.Get("X-Trace-Id"); id != "" {
			fmt.Fprintf(c.App.Writer, "trace: %s\n", id)
		}
		if resp.StatusCode != http.StatusOK {
			return cli.Exit("", 1)
		}
		return nil
	},
}

var rulesCommand = &cli.Command{
	Name:  "rules",
	Usage: "print the exchange lot rule for a symbol",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "symbol", Value: "ETHUSDT"},
		&cli.StringFlag{Name: "base-url", Value: "https://api.bybit.com", EnvVars: []string{"BYBIT_BASE_URL", "BASE_URL"}},
	},
	Action: func(c *cli.Context) error {
		// instruments-info публичный, ключи не нужны
		client := bybit.NewClient(bybit.Config{BaseURL: c.String("base-url")})
		inst, err := client.GetInstrument(c.Context, c.String("symbol"))
		if err != nil {
			return err
		}
		rule, err := client.GetLotRule(c.Context, c.String("symbol"))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s status=%s qtyStep=%s minOrderQty=%s\n",
			inst.Symbol, inst.Status, rule.Step, rule.MinQty)
		return nil
	},
}
