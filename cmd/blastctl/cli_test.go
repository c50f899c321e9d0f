package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/blast/internal/auth"
	"github.com/mmynk/blast/internal/identity"
	"github.com/mmynk/blast/internal/middleware"
	"github.com/mmynk/blast/internal/service"
	"github.com/mmynk/blast/internal/sms"
	"github.com/mmynk/blast/internal/storage/memstore"
	relayv1 "github.com/mmynk/blast/pkg/relayv1"
	"github.com/mmynk/blast/pkg/relayv1/relayv1connect"
)

const testPassword = "correct horse"

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// startServer points the global flags at an in-process relay.
func startServer(t *testing.T) {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	authenticator, err := auth.NewPasswordAuthenticator(hash)
	if err != nil {
		t.Fatalf("NewPasswordAuthenticator failed: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	relay := service.NewRelay(memstore.New(), identity.SchemeDerived, sms.LogSender{}, nil)

	path, handler := relayv1connect.NewRelayServiceHandler(
		service.NewRelayService(relay, authenticator, jwtManager),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager, relayv1connect.RelayServiceLoginProcedure)),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	serverURL, token = server.URL, ""
	t.Cleanup(func() {
		server.Close()
		serverURL, token = "", ""
		broadcastAll, broadcastIDs, broadcastPreview = false, nil, false
		loginPassword = ""
	})
}

func TestDeriveIDCmd(t *testing.T) {
	cmd, out := testCommand()
	if err := runDeriveID(cmd, []string{"Jane", "Doe"}); err != nil {
		t.Fatalf("runDeriveID failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "a79b84d8a9" {
		t.Errorf("derive-id = %q, want a79b84d8a9", got)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	cmd, out := testCommand()
	if err := runHashPassword(cmd, []string{testPassword}); err != nil {
		t.Fatalf("runHashPassword failed: %v", err)
	}
	if _, err := auth.NewPasswordAuthenticator(strings.TrimSpace(out.String())); err != nil {
		t.Errorf("output is not a usable hash: %v", err)
	}

	if err := runHashPassword(cmd, []string{"short"}); err == nil {
		t.Error("expected error for weak password")
	}
}

func TestRequiresToken(t *testing.T) {
	startServer(t)
	cmd, _ := testCommand()
	if err := runClients(cmd, nil); err == nil {
		t.Error("expected error without token")
	}
}

func TestLoginImportBroadcast(t *testing.T) {
	startServer(t)

	cmd, out := testCommand()
	loginPassword = testPassword
	if err := runLogin(cmd, nil); err != nil {
		t.Fatalf("runLogin failed: %v", err)
	}
	token = strings.TrimSpace(out.String())

	file := filepath.Join(t.TempDir(), "roster.csv")
	csv := "first_name,last_name,phone_number\nJane,Doe,+15550001\nBob,Jones,+15550002\n"
	if err := os.WriteFile(file, []byte(csv), 0o600); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}

	cmd, out = testCommand()
	if err := runImport(cmd, []string{file}); err != nil {
		t.Fatalf("runImport failed: %v", err)
	}
	var upsert relayv1.UpsertClientsResponse
	if err := json.Unmarshal(out.Bytes(), &upsert); err != nil {
		t.Fatalf("import output is not JSON: %v", err)
	}
	if upsert.CreatedCount != 2 {
		t.Errorf("created = %d, want 2", upsert.CreatedCount)
	}

	cmd, out = testCommand()
	if err := runOptIn(cmd, []string{"a79b84d8a9", "y"}); err != nil {
		t.Fatalf("runOptIn failed: %v", err)
	}
	if !strings.Contains(out.String(), `"opt_in": "Y"`) {
		t.Errorf("unexpected opt-in output: %s", out.String())
	}

	cmd, out = testCommand()
	broadcastIDs = []string{"db66d07156"}
	broadcastPreview = true
	if err := runBroadcast(cmd, []string{"See you soon"}); err != nil {
		t.Fatalf("runBroadcast failed: %v", err)
	}
	var summary relayv1.BroadcastResponse
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("broadcast output is not JSON: %v", err)
	}
	if summary.Status != "preview" || len(summary.Recipients) != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	startServer(t)
	token = "unused"

	file := filepath.Join(t.TempDir(), "roster.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	cmd, _ := testCommand()
	if err := runImport(cmd, []string{file}); err == nil {
		t.Error("expected error for .txt")
	}
}

func TestBroadcastRequiresTarget(t *testing.T) {
	startServer(t)
	token = "unused"
	cmd, _ := testCommand()
	if err := runBroadcast(cmd, []string{"hi"}); err == nil {
		t.Error("expected error without --all or --id")
	}
}
