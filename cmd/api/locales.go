// AngelaMos | 2026
// locales.go

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
)

var errIncompleteLocales = errors.New("locales are missing keys")

func newLocalesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locales",
		Short: "Inspect the translation catalog",
	}

	var strict bool
	check := &cobra.Command{
		Use:   "check",
		Short: "List keys each locale lacks relative to the default locale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			catalog, err := i18n.LoadCatalog(
				cfg.I18n.LocalesPath,
				cfg.I18n.DefaultLocale,
				cfg.I18n.Fallback,
			)
			if err != nil {
				return err
			}
			if err := catalog.Verify(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			incomplete := false
			for _, locale := range catalog.Locales() {
				missing := catalog.Missing(locale)
				fmt.Fprintf(out, "%s: %d keys, %d missing\n",
					locale, len(catalog.Keys(locale)), len(missing))
				for _, key := range missing {
					fmt.Fprintf(out, "  %s\n", key)
				}
				if len(missing) > 0 {
					incomplete = true
				}
			}

			if strict && incomplete {
				return errIncompleteLocales
			}
			return nil
		},
	}
	check.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any key is missing")

	cmd.AddCommand(check)
	return cmd
}
