// Command typesitter generates a tree-sitter grammar (or a GBNF grammar)
// that parses exactly the JSON documents described by a JSON Schema.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "typesitter",
		Short:        "Generate a grammar for the JSON documents a schema describes",
		Version:      GetVersion(),
		SilenceUsage: true,
		Long: `typesitter reads a JSON Schema (JSON or YAML, optionally wrapped in a
Kubernetes CustomResourceDefinition) and writes a tree-sitter grammar whose
rules parse exactly the documents of that shape. The schema's definitions,
annotated with the grammar of each rule, can be written alongside.

Flags may also be set through TYPESITTER_* environment variables or a
.typesitter.yaml file in the working directory.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, configFrom(v))
		},
	}
	cmd.SetVersionTemplate(GetVersionInfo() + "\n")

	f := cmd.Flags()
	f.StringP("input", "i", "", "input JSON Schema file (.json, .yaml, .yml)")
	f.StringP("output", "o", "", `grammar output file, "-" for stdout (default grammar.js, or grammar.gbnf for --dialect gbnf)`)
	f.StringP("schema", "s", "", "also write the definitions JSON Schema to this file")
	f.StringP("root", "r", "", `root definition (default "Grammar", or the CRD kind)`)
	f.String("name", "", "grammar name (default input file name without extension)")
	f.String("dialect", "tree-sitter", "output dialect: tree-sitter or gbnf")
	f.String("template", "", "base grammar template replacing the built-in one")
	f.String("crd-kind", "", "import the CustomResourceDefinition of this kind from a YAML bundle")
	f.Bool("strict-required", false, "require the properties a schema lists as required, in declaration order")
	f.String("lang", "en", "language of error hints: en or ja")
	cmd.PersistentFlags().String("config", "", "config file (default .typesitter.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	v.SetEnvPrefix("TYPESITTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(f)
	_ = v.BindPFlags(cmd.PersistentFlags())

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
