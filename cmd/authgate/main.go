package main

import (
	"os"

	"github.com/spf13/cobra"

	"authgate/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "authgate",
		Short: "Authgate - authentication and session server",
		Long:  `Authgate hosts the authentication and session lifecycle service with dictionary, PAM, LDAP and OAuth login backends.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
