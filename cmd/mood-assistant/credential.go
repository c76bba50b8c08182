package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mood-assistant/internal/credential"
)

// knownSecrets maps keyring keys to their environment overrides.
var knownSecrets = map[string]string{
	credential.KeyLineChannelSecret: credential.EnvLineChannelSecret,
	credential.KeyLineAccessToken:   credential.EnvLineAccessToken,
	credential.KeyWeatherAPIKey:     credential.EnvWeatherAPIKey,
}

// keyringStore is the part of credential.Store the command needs.
type keyringStore interface {
	Set(key, value string) error
	Delete(key string) error
	Lookup(env, key string) (string, error)
}

func newCredentialCmd() *cobra.Command {
	return newCredentialCmdWith(credential.NewStore())
}

func newCredentialCmdWith(store keyringStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage secrets in the system keyring",
		Long:  "Known keys: " + strings.Join(secretKeys(), ", "),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a secret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretKey(args[0]); err != nil {
				return err
			}
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretKey(args[0]); err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which secrets are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range secretKeys() {
				state := "configured"
				if _, err := store.Lookup(knownSecrets[key], key); err != nil {
					state = "missing"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", key, state)
			}
			return nil
		},
	})

	return cmd
}

func checkSecretKey(key string) error {
	if _, ok := knownSecrets[key]; !ok {
		return fmt.Errorf("unknown credential %q (known: %s)", key, strings.Join(secretKeys(), ", "))
	}
	return nil
}

func secretKeys() []string {
	keys := make([]string, 0, len(knownSecrets))
	for k := range knownSecrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
