package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// generateConfig is the resolved configuration of one generate run.
type generateConfig struct {
	Input          string
	Output         string
	Schema         string
	Root           string
	Name           string
	Dialect        string
	Template       string
	CRDKind        string
	StrictRequired bool
	Lang           string
	Verbose        bool
}

// loadConfig reads the file named by --config, or .typesitter.yaml from the
// working directory when present.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".typesitter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func configFrom(v *viper.Viper) generateConfig {
	return generateConfig{
		Input:          v.GetString("input"),
		Output:         v.GetString("output"),
		Schema:         v.GetString("schema"),
		Root:           v.GetString("root"),
		Name:           v.GetString("name"),
		Dialect:        v.GetString("dialect"),
		Template:       v.GetString("template"),
		CRDKind:        v.GetString("crd-kind"),
		StrictRequired: v.GetBool("strict-required"),
		Lang:           v.GetString("lang"),
		Verbose:        v.GetBool("verbose"),
	}
}
