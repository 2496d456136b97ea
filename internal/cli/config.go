package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/recall-oss/recall/internal/config"
	rerr "github.com/recall-oss/recall/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and validating configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Println(string(out))

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	}

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	_, err := config.Load(".")
	if err != nil {
		fmt.Printf("Configuration invalid: %v\n", err)
		if s := rerr.Suggestion(err); s != "" {
			fmt.Printf("Suggestion: %s\n", s)
		}
		return err
	}
	fmt.Println("Configuration is valid.")
	return nil
}
