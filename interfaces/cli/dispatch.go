package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/notify-go/interfaces/api"
)

// dispatchOptions holds options for the dispatch command.
type dispatchOptions struct {
	eventOptions
	configPath string
	dryRun     bool
	timeout    time.Duration
}

// dispatchOutput is the JSON document printed after a dispatch.
type dispatchOutput struct {
	ID        string               `json:"id"`
	Template  string               `json:"template,omitempty"`
	Gate      string               `json:"gate,omitempty"`
	Outcome   string               `json:"outcome"`
	Attempted int                  `json:"attempted"`
	Sent      int                  `json:"sent"`
	Failed    int                  `json:"failed"`
	Errors    []api.RecipientError `json:"errors,omitempty"`
	Duration  string               `json:"duration"`
}

// newDispatchCmd creates the dispatch command.
func (a *App) newDispatchCmd() *cobra.Command {
	opts := &dispatchOptions{}

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Send an event to every subscribed recipient",
		Long: `Dispatch an event record: resolve its template, look up every active user
with the gating preference enabled and send one message per phone number.

The result is printed as JSON. Individual send failures are listed in the
result and do not fail the command; a missing credential or a preference
store failure does.

Examples:
  notify dispatch -c notify.yaml -e event.json

  # Print messages instead of sending them
  notify dispatch -c notify.yaml -e event.json --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd.Context(), opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print messages to stderr instead of sending them")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall timeout for the dispatch")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (a *App) dispatch(ctx context.Context, opts *dispatchOptions) error {
	cfg, err := a.loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	req, err := a.request(&opts.eventOptions)
	if err != nil {
		return err
	}

	var buildOpts []api.BuildOption
	if opts.dryRun {
		buildOpts = append(buildOpts, api.WithDryRun(a.stderr))
	}

	engine, err := api.BuildFromConfig(ctx, cfg, buildOpts...)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close(context.WithoutCancel(ctx)) }()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	result, err := engine.Dispatch(ctx, req)
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}

	return writeResult(a.stdout, result)
}

func writeResult(w io.Writer, result api.Result) error {
	out := dispatchOutput{
		ID:        result.ID.String(),
		Template:  string(result.Template),
		Gate:      string(result.Gate),
		Outcome:   result.Outcome(),
		Attempted: result.Attempted,
		Sent:      result.Sent,
		Failed:    result.Failed,
		Errors:    result.Errors,
		Duration:  result.Duration.String(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
