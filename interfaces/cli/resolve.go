package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/notify-go/interfaces/api"
)

// eventOptions are the flags shared by commands that take an event record.
type eventOptions struct {
	eventPath string
	template  string
}

func (o *eventOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.eventPath, "event", "e", "", "Path to a JSON event record, or - for stdin (required)")
	cmd.Flags().StringVarP(&o.template, "template", "t", "", "Template kind (overrides the record and inference)")
	_ = cmd.MarkFlagRequired("event")
}

// request reads the event record and builds a dispatch request.
func (a *App) request(o *eventOptions) (api.Request, error) {
	raw, err := a.readInput(o.eventPath)
	if err != nil {
		return api.Request{}, err
	}

	rec, err := api.ParseRecord(raw)
	if err != nil {
		return api.Request{}, err
	}

	name := rec.Template
	if o.template != "" {
		name = o.template
	}

	req := api.Request{Event: rec.Event()}
	if name != "" {
		kind, err := api.ParseTemplate(name)
		if err != nil {
			return api.Request{}, err
		}
		req.Template = &kind
	}
	return req, nil
}

// newResolveCmd creates the resolve command.
func (a *App) newResolveCmd() *cobra.Command {
	opts := &eventOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the template, gate and parameters for an event",
		Long: `Resolve an event record to the template it would be sent with, the
preference flag recipients are selected by and the positional template
parameters. Nothing is looked up or sent.

Examples:
  notify resolve -e event.json
  echo '{"kind":"stage-update","fields":{"stageName":"Drafting"}}' | notify resolve -e -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(opts)
			if err != nil {
				return err
			}

			plan, err := api.Prepare(req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(plan); err != nil {
				return fmt.Errorf("failed to write plan: %w", err)
			}
			return nil
		},
	}

	opts.register(cmd)

	return cmd
}
