package requests

import (
	"emsbot/internal/common"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// httpWorkflow is the workflow instance the http handlers resolve
// against; it is assigned once by StartHttpServer before the server
// accepts traffic
var httpWorkflow *Workflow

var routesMapping = map[string]map[string]func() http.HandlerFunc{
	"/api/v1/requests": {
		http.MethodPost: getCreateRequestHandler,
		http.MethodGet:  getListRequestsHandler,
	},
	"/api/v1/requests/{requestId}": {
		http.MethodGet: getGetRequestHandler,
	},
}

type StartHttpServerOpts struct {
	Addr        string
	BearerAuth  *StartHttpServerBearerAuthOpts
	Done        chan common.Done
	ServiceLogs chan<- common.ServiceLog
	Workflow    *Workflow
}

type StartHttpServerBearerAuthOpts struct {
	Token string
}

// StartHttpServer exposes the request workflow over http so requests
// can be submitted and inspected without going through the chat
// platform; it blocks until the server stops
func StartHttpServer(opts StartHttpServerOpts) error {
	httpWorkflow = opts.Workflow

	router := mux.NewRouter()

	common.RegisterCommonHttpEndpoints(common.CommonHttpEndpointsOpts{
		Router:      router,
		ServiceLogs: opts.ServiceLogs,
	})

	for urlPath, routeHandlers := range routesMapping {
		for method, getRouteHandler := range routeHandlers {
			router.HandleFunc(urlPath, getRouteHandler()).Methods(method)
		}
	}

	router.NotFoundHandler = common.GetNotFoundHandler()

	serverOpts := common.NewHttpServerOpts{
		Addr:        opts.Addr,
		Done:        opts.Done,
		Handler:     router,
		ServiceLogs: opts.ServiceLogs,
	}

	if opts.BearerAuth != nil {
		serverOpts.BearerAuth = &common.NewHttpServerBearerAuthOpts{
			Token: opts.BearerAuth.Token,
		}
	}

	server, err := common.NewHttpServer(serverOpts)
	if err != nil {
		return fmt.Errorf("failed to create a http server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
