package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/indrajit912/hermes/internal/secrets"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the master and static service keys",
	}
	cmd.AddCommand(keysGenerateCmd(), keysRotateMasterCmd(), keysRotateStaticCmd())
	return cmd
}

func keysGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print fresh master and static keys for bootstrapping a deployment",
		// Overrides the root hook: generating keys must work before any
		// configuration or database exists.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secrets.GenerateKey()
			if err != nil {
				return err
			}
			static := make([]byte, 32)
			if _, err := rand.Read(static); err != nil {
				return err
			}
			fmt.Printf("HERMES_MASTER_KEY=%s\n", key.String())
			fmt.Printf("API_STATIC_KEY=%s\n", hex.EncodeToString(static))
			return nil
		},
	}
}

func keysRotateMasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-master",
		Short: "Re-encrypt every stored secret under a new master key",
		Long: "Rewrites all encrypted columns under a freshly generated master key " +
			"in one transaction, then persists the key to the env file. Stop the " +
			"API server first: requests decrypting under the old key would fail " +
			"mid-rotation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := rt.rotation.RotateMasterKey(cmd.Context())
			if err != nil {
				// A non-empty key on error means the store rewrote but the
				// env file did not: the key must not scroll away unseen.
				if key != "" {
					fmt.Printf("Master key rotated but NOT written to %s\n", rt.cfg.EnvFile)
					fmt.Printf("Save this key now: %s\n", key)
				}
				return err
			}
			fmt.Printf("Master key rotated and written to %s\n", rt.cfg.EnvFile)
			fmt.Printf("New key: %s\n", key)
			return nil
		},
	}
}

func keysRotateStaticCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-static",
		Short: "Replace the trusted-service static key",
		Long: "Generates a new static service key and persists it to the env " +
			"file. Restart the API server afterwards: the server compares " +
			"against the key it read at startup and keeps honoring the old " +
			"one until restarted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := rt.rotation.RotateStaticKey()
			if err != nil {
				return err
			}
			fmt.Printf("Static key rotated and written to %s\n", rt.cfg.EnvFile)
			fmt.Printf("New key: %s\n", key)
			return nil
		},
	}
}
