package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect registered users",
	}

	cmd.AddCommand(newUserListCmd())

	return cmd
}

func newUserListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered users with their API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runUserList(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rows, err := st.ListUsersWithKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No users registered yet.")
		return nil
	}

	fmt.Printf("%-6s %-24s %-30s %-10s %-24s\n", "ID", "NAME", "EMAIL", "STATUS", "EXPIRES")
	fmt.Printf("%-6s %-24s %-30s %-10s %-24s\n", "--", "----", "-----", "------", "-------")
	for _, u := range rows {
		name := u.FirstName + " " + u.LastName
		fmt.Printf("%-6d %-24s %-30s %-10s %-24s\n", u.UserID, name, u.Email, u.Status, u.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
