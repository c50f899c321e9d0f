package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/blast/internal/auth"
	"github.com/mmynk/blast/internal/broadcast"
	"github.com/mmynk/blast/internal/middleware"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/roster"
	"github.com/mmynk/blast/internal/storage"
	relayv1 "github.com/mmynk/blast/pkg/relayv1"
	"github.com/mmynk/blast/pkg/relayv1/relayv1connect"
)

var _ relayv1connect.RelayServiceHandler = (*RelayService)(nil)

// ErrAmbiguousBatch is returned when an import sets more than one input form.
var ErrAmbiguousBatch = errors.New("only one of rows, csv or xlsx may be set")

// RelayService implements the Connect RelayService.
type RelayService struct {
	relay         *Relay
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewRelayService creates a new RelayService.
func NewRelayService(relay *Relay, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *RelayService {
	return &RelayService{
		relay:         relay,
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// connectError maps domain errors onto connect codes.
func connectError(err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrInvalidOptIn),
		errors.Is(err, broadcast.ErrEmptyMessage),
		errors.Is(err, roster.ErrInvalidRow),
		errors.Is(err, roster.ErrNoHeader):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toProtoClient(c *models.Client) *relayv1.Client {
	return &relayv1.Client{
		Id:                       c.ID,
		FirstName:                c.FirstName,
		LastName:                 c.LastName,
		PhoneNumber:              c.PhoneNumber,
		Email:                    c.Email,
		Notes:                    c.Notes,
		DaysSinceLastAppointment: c.DaysSinceLastAppointment,
		OptIn:                    string(c.OptIn),
	}
}

// ToUpsertResponse converts an import summary to its wire form.
func ToUpsertResponse(s roster.UpsertSummary) *relayv1.UpsertClientsResponse {
	resp := &relayv1.UpsertClientsResponse{
		ProcessedCount: s.Processed,
		SkippedCount:   s.Skipped,
		CreatedCount:   s.Created,
		UpdatedCount:   s.Updated,
		FailedCount:    s.Failed,
	}
	for _, e := range s.Errors {
		resp.Errors = append(resp.Errors, &relayv1.RowError{Row: e.Row, Id: e.ID, Error: e.Error})
	}
	return resp
}

// ToBroadcastResponse converts a dispatch summary to its wire form.
func ToBroadcastResponse(s *broadcast.Summary) *relayv1.BroadcastResponse {
	resp := &relayv1.BroadcastResponse{
		BroadcastId:      s.BroadcastID,
		Status:           string(s.Status),
		AttemptedCount:   s.Attempted,
		SuccessCount:     s.Succeeded,
		FailureCount:     s.Failed,
		LookupErrorCount: s.LookupErrors,
		MissingIds:       s.MissingIDs,
	}
	for _, o := range s.Recipients {
		resp.Recipients = append(resp.Recipients, &relayv1.Delivery{
			Id:          o.ID,
			PhoneNumber: o.PhoneNumber,
			Sent:        o.Sent,
			Error:       o.Error,
		})
	}
	return resp
}

// Login exchanges the operator password for a session token.
func (s *RelayService) Login(ctx context.Context, req *connect.Request[relayv1.LoginRequest]) (*connect.Response[relayv1.LoginResponse], error) {
	slog.Info("Login request received", "operator", req.Msg.Operator)

	operator, err := s.authenticator.Authenticate(ctx, req.Msg.Operator, req.Msg.Password)
	if err != nil {
		slog.Warn("Login failed", "operator", req.Msg.Operator, "error", err)
		return nil, connectError(err)
	}

	token, err := s.jwtManager.Generate(operator)
	if err != nil {
		slog.Error("Login failed to issue token", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Login successful", "operator", operator)
	return connect.NewResponse(&relayv1.LoginResponse{Token: token}), nil
}

// ListClients returns the whole roster in scan order.
func (s *RelayService) ListClients(ctx context.Context, req *connect.Request[relayv1.ListClientsRequest]) (*connect.Response[relayv1.ListClientsResponse], error) {
	clients, err := s.relay.Clients(ctx)
	if err != nil {
		slog.Error("ListClients failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*relayv1.Client, len(clients))
	for i, c := range clients {
		out[i] = toProtoClient(c)
	}

	slog.Info("ListClients successful", "count", len(out))
	return connect.NewResponse(&relayv1.ListClientsResponse{Clients: out}), nil
}

// DecodeBatch turns exactly one of rows, CSV text or an XLSX workbook into
// raw rows.
func DecodeBatch(msg *relayv1.UpsertClientsRequest) ([]roster.RawRow, error) {
	forms := 0
	for _, set := range []bool{len(msg.Rows) > 0, msg.Csv != "", len(msg.Xlsx) > 0} {
		if set {
			forms++
		}
	}
	if forms > 1 {
		return nil, ErrAmbiguousBatch
	}

	switch {
	case msg.Csv != "":
		return roster.ReadCSV(strings.NewReader(msg.Csv))
	case len(msg.Xlsx) > 0:
		return roster.ReadXLSX(bytes.NewReader(msg.Xlsx))
	}
	rows := make([]roster.RawRow, len(msg.Rows))
	for i, r := range msg.Rows {
		rows[i] = roster.RawRow(r)
	}
	return rows, nil
}

// UpsertClients merges a batch into the roster. Per-row problems are
// reported in the summary; only an unreadable batch fails the call.
func (s *RelayService) UpsertClients(ctx context.Context, req *connect.Request[relayv1.UpsertClientsRequest]) (*connect.Response[relayv1.UpsertClientsResponse], error) {
	rows, err := DecodeBatch(req.Msg)
	if err != nil {
		slog.Warn("UpsertClients rejected", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	slog.Info("UpsertClients request received", "operator", middleware.GetOperator(ctx), "rows", len(rows))
	summary := s.relay.Upsert(ctx, rows)
	return connect.NewResponse(ToUpsertResponse(summary)), nil
}

// SetOptIn records a client's consent answer.
func (s *RelayService) SetOptIn(ctx context.Context, req *connect.Request[relayv1.SetOptInRequest]) (*connect.Response[relayv1.SetOptInResponse], error) {
	client, err := s.relay.SetOptIn(ctx, req.Msg.Id, req.Msg.OptIn)
	if err != nil {
		slog.Warn("SetOptIn failed", "client_id", req.Msg.Id, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&relayv1.SetOptInResponse{Client: toProtoClient(client)}), nil
}

// Broadcast sends, or previews, one message to all clients or a list of IDs.
func (s *RelayService) Broadcast(ctx context.Context, req *connect.Request[relayv1.BroadcastRequest]) (*connect.Response[relayv1.BroadcastResponse], error) {
	slog.Info("Broadcast request received",
		"operator", middleware.GetOperator(ctx),
		"all", req.Msg.All,
		"ids_count", len(req.Msg.Ids),
		"preview", req.Msg.Preview,
	)

	target := roster.Target{All: req.Msg.All, IDs: req.Msg.Ids}
	summary, err := s.relay.Broadcast(ctx, req.Msg.Message, target, req.Msg.Preview)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(ToBroadcastResponse(summary)), nil
}
