package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	serverURL string
	token     string

	// broadcast flags
	broadcastAll     bool
	broadcastIDs     []string
	broadcastPreview bool

	// login flags
	loginOperator string
	loginPassword string
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blastctl",
	Short: "Operate a blast relay server",
	Long: `blastctl talks to a blast relay server over its RPC API.

Log in once, export the printed token as BLAST_TOKEN, then import rosters
and send broadcasts. derive-id and hash-password run locally.`,
	SilenceUsage: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange the operator password for a session token",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List every client in the roster",
	Args:  cobra.NoArgs,
	RunE:  runClients,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Upsert a roster from a .csv or .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var broadcastCmd = &cobra.Command{
	Use:   "broadcast MESSAGE",
	Short: "Send one message to all clients or to selected IDs",
	Long: `Send one message to every client (--all) or to the listed IDs (--id, repeatable).

With --preview the server resolves recipients and reports them without sending.`,
	Args: cobra.ExactArgs(1),
	RunE: runBroadcast,
}

var optInCmd = &cobra.Command{
	Use:   "opt-in ID Y|N",
	Short: "Record a client's consent answer",
	Args:  cobra.ExactArgs(2),
	RunE:  runOptIn,
}

var deriveIDCmd = &cobra.Command{
	Use:   "derive-id FIRST LAST",
	Short: "Print the roster ID for a name",
	Args:  cobra.ExactArgs(2),
	RunE:  runDeriveID,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password PASSWORD",
	Short: "Print a bcrypt hash for the operator_password_hash secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", getEnv("BLAST_SERVER", "http://localhost:8080"), "Relay server URL (or set BLAST_SERVER env)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BLAST_TOKEN"), "Session token from login (or set BLAST_TOKEN env)")

	loginCmd.Flags().StringVar(&loginOperator, "operator", "", "Operator name recorded in the session")
	loginCmd.Flags().StringVar(&loginPassword, "password", os.Getenv("BLAST_PASSWORD"), "Operator password (or set BLAST_PASSWORD env)")

	broadcastCmd.Flags().BoolVar(&broadcastAll, "all", false, "Send to every client")
	broadcastCmd.Flags().StringSliceVar(&broadcastIDs, "id", nil, "Client ID to send to (repeatable)")
	broadcastCmd.Flags().BoolVar(&broadcastPreview, "preview", false, "List recipients without sending")
	broadcastCmd.MarkFlagsMutuallyExclusive("all", "id")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(broadcastCmd)
	rootCmd.AddCommand(optInCmd)
	rootCmd.AddCommand(deriveIDCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
