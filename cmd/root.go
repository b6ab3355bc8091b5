/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/encomment/internal/config"
	"github.com/valpere/encomment/internal/dialect"
)

var version = "0.1.0"

// ErrMissingPath is returned when no input file is given.
var ErrMissingPath = errors.New("missing input file path")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "encomment <file>",
	Short: "Add English translations under Japanese source comments",
	Long: `Scan a Python or JavaScript/TypeScript file for comments written in
Japanese and insert one English line after each comment group, block
comment or docstring. The original file is left untouched; the result is
written to <file>.encommented.

Supported extensions: .py .js .jsx .ts .tsx

Without --services every inserted line is a placeholder of the form
"English: <original text>". Services are tried in the given order:
  - google      Google Cloud Translate (requires credentials)
  - mymemory    MyMemory (free, 5000 chars/day)
  - ollama      Ollama LLM (self-hosted)
  - openrouter  OpenRouter LLM (requires API key)
  - systran     Systran Translate (requires API key)

Settings may also come from encomment.yaml (., ~/.config/encomment,
/etc/encomment) and ENCOMMENT_* environment variables.`,
	Version: version,
	Args:    requirePath,
	RunE:    runAnnotate,
}

// requirePath accepts exactly one argument with a supported extension.
// Errors here are usage errors and print the help text.
func requirePath(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return ErrMissingPath
	case 1:
		_, err := dialect.ForPath(args[0])
		return err
	default:
		return errors.New("expected exactly one input file")
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default search: ./encomment.yaml, ~/.config/encomment, /etc/encomment)")
	config.RegisterFlags(rootCmd.Flags())

	rootCmd.SetVersionTemplate("encomment {{.Version}}\nextensions: " + strings.Join(dialect.Extensions(), " ") + "\n")
}
