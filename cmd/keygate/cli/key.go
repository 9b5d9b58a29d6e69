package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/model"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage issued API keys",
		Long:    "List issued API keys and flip their status. Keys are issued through user registration, not directly.",
	}

	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRevokeCmd())
	cmd.AddCommand(newKeyExpireCmd())

	return cmd
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all issued API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runKeyList(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	keys, err := st.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(keys)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys issued yet.")
		return nil
	}

	now := time.Now().UTC()
	fmt.Printf("%-40s %-10s %-24s %-8s\n", "TOKEN", "STATUS", "EXPIRES", "LAPSED")
	fmt.Printf("%-40s %-10s %-24s %-8s\n", "-----", "------", "-------", "------")
	for _, k := range keys {
		lapsed := "no"
		if now.After(k.ExpiresAt) {
			lapsed = "yes"
		}
		fmt.Printf("%-40s %-10s %-24s %-8s\n", k.Token, k.Status, k.ExpiresAt.Format(time.RFC3339), lapsed)
	}

	return nil
}

// ---------- key revoke / expire ----------

func newKeyRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke an API key",
		Long:  "Set a key's status to Revoked. Revoked keys fail validation immediately.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySetStatus(args[0], model.StatusRevoked)
		},
	}
}

func newKeyExpireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire <token>",
		Short: "Mark an API key as expired",
		Long:  "Set a key's status to Expired. Validation already rejects keys past their expiry date; this records the transition in the store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySetStatus(args[0], model.StatusExpired)
		},
	}
}

func runKeySetStatus(token, status string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	key, err := st.GetAPIKeyByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("look up key: %w", err)
	}
	if err := st.UpdateAPIKeyStatus(ctx, key.ID, status); err != nil {
		return fmt.Errorf("update key status: %w", err)
	}

	fmt.Printf("Key %s is now %s\n", token, status)
	return nil
}
