package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/fundme/internal/config"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Show or change the settings in config.json.

Every key can also be set for one run through the environment, e.g.
FUNDME_ENDPOINT=http://127.0.0.1:1248 or FUNDME_SWITCH_FAILURE_POLICY=proceed.`,
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.KeyValueBlock("Current Configuration", configPairs(cfg)))
		fmt.Println(ui.Meta(fmt.Sprintf("%d added network(s)", len(cfg.Networks))))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save it.

Keys: ` + strings.Join(config.Keys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(key); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		v, _ := cfg.Get(key)
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, v)))
		return nil
	},
}

func configPairs(c *config.Config) [][2]string {
	keys := config.Keys()
	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		v, err := c.Get(k)
		if err != nil {
			continue
		}
		if v == "" {
			v = "(unset)"
		}
		pairs = append(pairs, [2]string{k, v})
	}
	return pairs
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
