package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/notify-go/interfaces/api"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	configPath string
	strict     bool
	showSchema bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a notify configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Required fields (name, version)
  - Channel, storage and telemetry settings
  - Environment variable references (in strict mode)

It does not connect to the store or the channel.

Examples:
  # Validate a configuration file
  notify validate -c notify.yaml

  # Strict validation (fail on missing env vars)
  notify validate -c notify.yaml --strict

  # Show the JSON schema for configuration
  notify validate --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showSchema {
				return a.showConfigSchema()
			}
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")
	cmd.Flags().BoolVar(&opts.showSchema, "schema", false, "Show JSON schema for configuration")

	return cmd
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateOptions) error {
	if opts.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	loaderOpts := []api.ConfigLoaderOption{
		api.ConfigWithValidation(true),
	}
	if opts.strict {
		loaderOpts = append(loaderOpts, api.ConfigWithStrictEnv(true))
	}

	config, err := api.NewConfigLoaderWithOptions(loaderOpts...).LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	fmt.Fprintf(a.stdout, "  Name: %s\n", config.Name)
	fmt.Fprintf(a.stdout, "  Version: %s\n", config.Version)

	fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	fmt.Fprintf(a.stdout, "  Region: %s\n", config.Phone.DefaultRegion)
	fmt.Fprintf(a.stdout, "  Channel: %s\n", config.Channel.Provider)
	if len(config.Channel.Templates) > 0 {
		fmt.Fprintf(a.stdout, "  Template names: %d\n", len(config.Channel.Templates))
		for kind, name := range config.Channel.Templates {
			fmt.Fprintf(a.stdout, "    - %s -> %s\n", kind, name)
		}
	}
	fmt.Fprintf(a.stdout, "  Storage: %s\n", config.Storage.Driver)
	if config.Storage.Cache.Enabled {
		fmt.Fprintf(a.stdout, "  Cache: redis %s (ttl=%s)\n",
			config.Storage.Cache.Address, config.Storage.Cache.TTL.Duration())
	}
	if config.Dispatch.MaxConcurrency > 0 {
		fmt.Fprintf(a.stdout, "  Max concurrency: %d\n", config.Dispatch.MaxConcurrency)
	}
	if config.Telemetry.Enabled {
		fmt.Fprintf(a.stdout, "  Telemetry: %s\n", config.Telemetry.Exporter)
	}

	return nil
}

// showConfigSchema displays the JSON schema for configuration.
func (a *App) showConfigSchema() error {
	schemaJSON, err := api.ConfigSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Fprintln(a.stdout, schemaJSON)
	return nil
}
