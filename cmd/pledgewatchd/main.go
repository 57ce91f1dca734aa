package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pledgewatch/pledgewatch/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pledgewatchd",
		Short: "Pledgewatch daemon and CLI",
		Long:  "Pledgewatch daemon for running the API server and managing monitored companies",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.CompanyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
