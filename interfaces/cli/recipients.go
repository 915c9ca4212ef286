package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/notify-go/domain/preference"
	api "github.com/felixgeelhaar/notify-go/interfaces/api"
)

// recipientsOptions holds options for the recipients command.
type recipientsOptions struct {
	configPath string
	flag       string
	jsonOutput bool
}

// newRecipientsCmd creates the recipients command.
func (a *App) newRecipientsCmd() *cobra.Command {
	opts := &recipientsOptions{}

	cmd := &cobra.Command{
		Use:   "recipients",
		Short: "List the recipients subscribed to a preference flag",
		Long: `List the normalized, deduplicated addresses a dispatch gated on the given
preference flag would be sent to.

Examples:
  notify recipients -c notify.yaml --flag stageDrafting
  notify recipients -c notify.yaml --flag meeting --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := preference.ParseFlag(opts.flag)
			if err != nil {
				return fmt.Errorf("%w: %q", err, opts.flag)
			}

			cfg, err := a.loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine, err := api.BuildFromConfig(ctx, cfg, api.WithDryRun(a.stderr))
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close(ctx) }()

			recipients, err := engine.Recipients.Resolve(ctx, flag)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				if recipients == nil {
					recipients = []api.Recipient{}
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(recipients)
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tADDRESS\tSECONDARY")
			for _, r := range recipients {
				fmt.Fprintf(w, "%s\t%s\t%t\n", r.UserID, r.Address, r.Secondary)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "\n%d recipient(s)\n", len(recipients))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().StringVarP(&opts.flag, "flag", "f", "", "Preference flag, e.g. stageDrafting (required)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output recipients as JSON")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("flag")

	return cmd
}
