package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/quickpay-go/internal/app"
	"github.com/samvad-hq/quickpay-go/internal/config"
	"github.com/samvad-hq/quickpay-go/internal/logger"
	"github.com/samvad-hq/quickpay-go/pkg/quickpay"
)

var errUsage = errors.New("usage error")

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("gateway answered HTTP %d", e.status)
}

// cliState is shared by the subcommands of one invocation.
type cliState struct {
	clientOpts []quickpay.Option

	output      string
	showHeaders bool
	apiKey      string
	fail        bool

	runner *app.Runner
}

func newRootCmd(clientOpts ...quickpay.Option) *cobra.Command {
	st := &cliState{clientOpts: clientOpts}

	root := &cobra.Command{
		Use:   "quickpay",
		Short: "Call the QuickPay payment gateway API",
		Long: `quickpay sends a single request to the QuickPay REST API and prints the
response. Parameters are given as key=value pairs; for GET they become the
query string, for other verbs a form-encoded body.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&st.output, "output", "o", "", "body format: json, yaml or raw (default from OUTPUT_FORMAT)")
	root.PersistentFlags().BoolVar(&st.showHeaders, "headers", false, "print sent and received headers")
	root.PersistentFlags().StringVar(&st.apiKey, "api-key", "", "API key or user:password (default from QUICKPAY_API_KEY)")
	root.PersistentFlags().BoolVar(&st.fail, "fail", false, "exit with status 22 when the gateway answers 400 or above")

	for _, verb := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		root.AddCommand(newVerbCmd(st, verb))
	}
	root.AddCommand(newHistoryCmd(st))
	root.AddCommand(newVersionCmd())

	return root
}

// setup loads config, logging and the runner. Flags override config values.
func (st *cliState) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if st.apiKey != "" {
		cfg.APIKey = st.apiKey
	}
	if st.output != "" {
		format := strings.ToLower(st.output)
		if format != app.FormatJSON && format != app.FormatYAML && format != app.FormatRaw {
			return fmt.Errorf("%w: unknown output format %q", errUsage, st.output)
		}
		cfg.OutputFormat = format
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runner, err := app.NewRunner(cfg, log, st.clientOpts...)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err)
		return err
	}
	st.runner = runner
	return nil
}

func (st *cliState) teardown() {
	if st.runner != nil {
		if err := st.runner.Close(); err != nil {
			logger.ErrorObj("journal close failed", "error", err)
		}
	}
	_ = logger.Close()
}

func newVerbCmd(st *cliState, verb string) *cobra.Command {
	name := strings.ToLower(verb)
	return &cobra.Command{
		Use:   name + " <path> [key=value ...]",
		Short: fmt.Sprintf("Send a %s request", verb),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			if err := st.setup(); err != nil {
				return err
			}
			defer st.teardown()

			resp, err := st.runner.Call(cmd.Context(), verb, args[0], params)
			if err != nil {
				return err
			}
			if err := app.Render(cmd.OutOrStdout(), resp, st.runner.Config().OutputFormat, st.showHeaders); err != nil {
				return err
			}
			if st.fail && resp.HTTPStatus() >= 400 {
				return &httpStatusError{status: resp.HTTPStatus()}
			}
			return nil
		},
	}
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently sent requests from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := st.setup(); err != nil {
				return err
			}
			defer st.teardown()

			entries, err := st.runner.History(limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			format := st.runner.Config().OutputFormat
			return app.RenderHistory(cmd.OutOrStdout(), entries, format)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quickpay version %s (API %s)\n", quickpay.Version, quickpay.APIVersion)
		},
	}
}

// parseParams turns key=value arguments into ordered params.
func parseParams(args []string) (quickpay.Params, error) {
	var params quickpay.Params
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q must be key=value", errUsage, arg)
		}
		params = params.Add(key, value)
	}
	return params, nil
}
