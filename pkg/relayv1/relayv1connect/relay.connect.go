// Package relayv1connect wires the blast.v1.RelayService messages to
// connect handlers and clients.
package relayv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	relayv1 "github.com/mmynk/blast/pkg/relayv1"
)

const (
	// RelayServiceName is the fully-qualified name of the RelayService service.
	RelayServiceName = "blast.v1.RelayService"
)

// Procedure paths, usable as connect.Spec.Procedure and as HTTP routes.
const (
	RelayServiceLoginProcedure         = "/blast.v1.RelayService/Login"
	RelayServiceListClientsProcedure   = "/blast.v1.RelayService/ListClients"
	RelayServiceUpsertClientsProcedure = "/blast.v1.RelayService/UpsertClients"
	RelayServiceSetOptInProcedure      = "/blast.v1.RelayService/SetOptIn"
	RelayServiceBroadcastProcedure     = "/blast.v1.RelayService/Broadcast"
)

// RelayServiceClient is a client for the blast.v1.RelayService service.
type RelayServiceClient interface {
	Login(context.Context, *connect.Request[relayv1.LoginRequest]) (*connect.Response[relayv1.LoginResponse], error)
	ListClients(context.Context, *connect.Request[relayv1.ListClientsRequest]) (*connect.Response[relayv1.ListClientsResponse], error)
	UpsertClients(context.Context, *connect.Request[relayv1.UpsertClientsRequest]) (*connect.Response[relayv1.UpsertClientsResponse], error)
	SetOptIn(context.Context, *connect.Request[relayv1.SetOptInRequest]) (*connect.Response[relayv1.SetOptInResponse], error)
	Broadcast(context.Context, *connect.Request[relayv1.BroadcastRequest]) (*connect.Response[relayv1.BroadcastResponse], error)
}

// NewRelayServiceClient constructs a client for the blast.v1.RelayService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewRelayServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RelayServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &relayServiceClient{
		login: connect.NewClient[relayv1.LoginRequest, relayv1.LoginResponse](
			httpClient, baseURL+RelayServiceLoginProcedure, opts...,
		),
		listClients: connect.NewClient[relayv1.ListClientsRequest, relayv1.ListClientsResponse](
			httpClient, baseURL+RelayServiceListClientsProcedure, opts...,
		),
		upsertClients: connect.NewClient[relayv1.UpsertClientsRequest, relayv1.UpsertClientsResponse](
			httpClient, baseURL+RelayServiceUpsertClientsProcedure, opts...,
		),
		setOptIn: connect.NewClient[relayv1.SetOptInRequest, relayv1.SetOptInResponse](
			httpClient, baseURL+RelayServiceSetOptInProcedure, opts...,
		),
		broadcast: connect.NewClient[relayv1.BroadcastRequest, relayv1.BroadcastResponse](
			httpClient, baseURL+RelayServiceBroadcastProcedure, opts...,
		),
	}
}

type relayServiceClient struct {
	login         *connect.Client[relayv1.LoginRequest, relayv1.LoginResponse]
	listClients   *connect.Client[relayv1.ListClientsRequest, relayv1.ListClientsResponse]
	upsertClients *connect.Client[relayv1.UpsertClientsRequest, relayv1.UpsertClientsResponse]
	setOptIn      *connect.Client[relayv1.SetOptInRequest, relayv1.SetOptInResponse]
	broadcast     *connect.Client[relayv1.BroadcastRequest, relayv1.BroadcastResponse]
}

func (c *relayServiceClient) Login(ctx context.Context, req *connect.Request[relayv1.LoginRequest]) (*connect.Response[relayv1.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *relayServiceClient) ListClients(ctx context.Context, req *connect.Request[relayv1.ListClientsRequest]) (*connect.Response[relayv1.ListClientsResponse], error) {
	return c.listClients.CallUnary(ctx, req)
}

func (c *relayServiceClient) UpsertClients(ctx context.Context, req *connect.Request[relayv1.UpsertClientsRequest]) (*connect.Response[relayv1.UpsertClientsResponse], error) {
	return c.upsertClients.CallUnary(ctx, req)
}

func (c *relayServiceClient) SetOptIn(ctx context.Context, req *connect.Request[relayv1.SetOptInRequest]) (*connect.Response[relayv1.SetOptInResponse], error) {
	return c.setOptIn.CallUnary(ctx, req)
}

func (c *relayServiceClient) Broadcast(ctx context.Context, req *connect.Request[relayv1.BroadcastRequest]) (*connect.Response[relayv1.BroadcastResponse], error) {
	return c.broadcast.CallUnary(ctx, req)
}

// RelayServiceHandler is implemented by the server side of blast.v1.RelayService.
type RelayServiceHandler interface {
	Login(context.Context, *connect.Request[relayv1.LoginRequest]) (*connect.Response[relayv1.LoginResponse], error)
	ListClients(context.Context, *connect.Request[relayv1.ListClientsRequest]) (*connect.Response[relayv1.ListClientsResponse], error)
	UpsertClients(context.Context, *connect.Request[relayv1.UpsertClientsRequest]) (*connect.Response[relayv1.UpsertClientsResponse], error)
	SetOptIn(context.Context, *connect.Request[relayv1.SetOptInRequest]) (*connect.Response[relayv1.SetOptInResponse], error)
	Broadcast(context.Context, *connect.Request[relayv1.BroadcastRequest]) (*connect.Response[relayv1.BroadcastResponse], error)
}

// NewRelayServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewRelayServiceHandler(svc RelayServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	login := connect.NewUnaryHandler(RelayServiceLoginProcedure, svc.Login, opts...)
	listClients := connect.NewUnaryHandler(RelayServiceListClientsProcedure, svc.ListClients, opts...)
	upsertClients := connect.NewUnaryHandler(RelayServiceUpsertClientsProcedure, svc.UpsertClients, opts...)
	setOptIn := connect.NewUnaryHandler(RelayServiceSetOptInProcedure, svc.SetOptIn, opts...)
	broadcast := connect.NewUnaryHandler(RelayServiceBroadcastProcedure, svc.Broadcast, opts...)
	return "/" + RelayServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RelayServiceLoginProcedure:
			login.ServeHTTP(w, r)
		case RelayServiceListClientsProcedure:
			listClients.ServeHTTP(w, r)
		case RelayServiceUpsertClientsProcedure:
			upsertClients.ServeHTTP(w, r)
		case RelayServiceSetOptInProcedure:
			setOptIn.ServeHTTP(w, r)
		case RelayServiceBroadcastProcedure:
			broadcast.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
