package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/depmatch/config"
)

const exampleRules = `version: 1
mode: any
rules:
  - name: giving
    pattern: |
      # who gave what to whom
      trigger: gave
      giver: nsubj
      theme: dobj
      recipient: /^(iobj|nmod_to)$/
`

// initCmd: depmatch init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new depmatch configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		created, err := initConfigurationFile(cfgFile)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		for _, path := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
		}
	},
}

// initConfigurationFile writes the default configuration to path and an
// example rule file next to it unless one already exists. It returns the
// files it wrote.
func initConfigurationFile(path string) ([]string, error) {
	if path == "" {
		path = config.DefaultPath
	}

	c := config.DefaultConfig()
	if err := c.SaveToFile(path); err != nil {
		return nil, err
	}
	created := []string{path}

	rulesPath := c.RulesPath(path)
	_, err := os.Stat(rulesPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.WriteFile(rulesPath, []byte(exampleRules), 0o644); err != nil {
			return created, fmt.Errorf("failed to write example rules: %w", err)
		}
		created = append(created, rulesPath)
	case err != nil:
		return created, err
	}
	return created, nil
}
