package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tkivisto/legalintake/cmd/cli/cases"
)

func init() {
	// The .env file is optional; environment variables win in any case.
	_ = godotenv.Load()
	rootCmd.AddGroup(cases.Group)
	rootCmd.AddCommand(cases.Create, cases.List, cases.Show)
}

var rootCmd = &cobra.Command{
	Use:  "legalintake-cli",
	Long: `Command line utilities for administering the legal intake database.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
