// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/provider"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/internal/secrets"
	"github.com/pdiddy/deep-research/pkg/types"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List LLM and search providers with their default models",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFrom(viper.GetViper(), loadedSecrets)
		return printProviders(cmd.OutOrStdout(),
			provider.NewRegistry(),
			search.NewClient(opts.Search),
			loadedSecrets,
		)
	},
}

func printProviders(w io.Writer, reg *provider.Registry, client *search.Client, keys secrets.Store) error {
	fmt.Fprintf(w, "%-18s  %-32s  %-32s  %-32s  %s\n", "LLM", "Thinking", "Networking", "Report", "Key")
	fmt.Fprintln(w, strings.Repeat("-", 130))
	for _, name := range reg.Names() {
		v, err := reg.Vendor(string(name))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-18s  %-32s  %-32s  %-32s  %s\n", name,
			v.Defaults.For(types.RoleThinking),
			v.Defaults.For(types.RoleNetworking),
			v.Defaults.For(types.RoleReport),
			keySource(keys, string(name), v.EnvKey),
		)
	}

	fmt.Fprintf(w, "\n%-18s  %s\n", "Search", "Key")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, name := range client.Names() {
		fmt.Fprintf(w, "%-18s  %s\n", name, keySource(keys, name, client.EnvKey(name)))
	}
	return nil
}

// keySource names where a vendor key would come from, without the value.
func keySource(keys secrets.Store, vendor, envKey string) string {
	if keys.APIKey(vendor) != "" {
		return secrets.KeyFile(vendor)
	}
	if envKey != "" {
		return "$" + envKey
	}
	return "-"
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
