package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigPath = "config.yaml"

func NewRoot() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:          "venue-reservations",
		Short:        "Venue availability and reservation engine",
		SilenceUsage: true,
		RunE:         serve(v),
	}
	cmd.PersistentFlags().String("config", defaultConfigPath, "path to the YAML config file")
	_ = v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.AddCommand(NewServeCmd(v))
	cmd.AddCommand(NewMigrateCmd(v))
	cmd.AddCommand(NewSeedCmd(v))
	cmd.AddCommand(NewWorkerCmd(v))
	return cmd
}

// newViper reads VENUE_* variables, with dots in keys mapped to underscores,
// so VENUE_HTTP_ADDRESS overrides http.address.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("VENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("config", defaultConfigPath)
	_ = v.BindEnv("config", "VENUE_CONFIG", "CONFIG_PATH")
	for _, key := range overrideKeys {
		_ = v.BindEnv(key)
	}
	return v
}
