package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/blast/internal/auth"
	"github.com/mmynk/blast/internal/identity"
	relayv1 "github.com/mmynk/blast/pkg/relayv1"
	"github.com/mmynk/blast/pkg/relayv1/relayv1connect"
)

func newClient() relayv1connect.RelayServiceClient {
	return relayv1connect.NewRelayServiceClient(http.DefaultClient, serverURL)
}

// withToken wraps msg in a request carrying the session token.
func withToken[T any](msg *T) (*connect.Request[T], error) {
	if token == "" {
		return nil, errors.New("no session token: run blastctl login and set BLAST_TOKEN")
	}
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginPassword == "" {
		return errors.New("--password or BLAST_PASSWORD is required")
	}
	resp, err := newClient().Login(cmd.Context(), connect.NewRequest(&relayv1.LoginRequest{
		Operator: loginOperator,
		Password: loginPassword,
	}))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Msg.Token)
	return nil
}

func runClients(cmd *cobra.Command, args []string) error {
	req, err := withToken(&relayv1.ListClientsRequest{})
	if err != nil {
		return err
	}
	resp, err := newClient().ListClients(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}
	return printJSON(cmd, resp.Msg.Clients)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	batch := &relayv1.UpsertClientsRequest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		batch.Csv = string(data)
	case ".xlsx":
		batch.Xlsx = data
	default:
		return fmt.Errorf("unsupported file type %q: want .csv or .xlsx", filepath.Ext(path))
	}

	req, err := withToken(batch)
	if err != nil {
		return err
	}
	resp, err := newClient().UpsertClients(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return printJSON(cmd, resp.Msg)
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	if !broadcastAll && len(broadcastIDs) == 0 {
		return errors.New("one of --all or --id is required")
	}
	req, err := withToken(&relayv1.BroadcastRequest{
		Message: args[0],
		All:     broadcastAll,
		Ids:     broadcastIDs,
		Preview: broadcastPreview,
	})
	if err != nil {
		return err
	}
	resp, err := newClient().Broadcast(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("broadcast failed: %w", err)
	}
	return printJSON(cmd, resp.Msg)
}

func runOptIn(cmd *cobra.Command, args []string) error {
	req, err := withToken(&relayv1.SetOptInRequest{Id: args[0], OptIn: strings.ToUpper(args[1])})
	if err != nil {
		return err
	}
	resp, err := newClient().SetOptIn(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("opt-in failed: %w", err)
	}
	return printJSON(cmd, resp.Msg.Client)
}

func runDeriveID(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), identity.Derive(args[0], args[1]))
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
