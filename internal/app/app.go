package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/koyif/cardbank/internal/client"
	"github.com/koyif/cardbank/internal/config"
	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/internal/session"
	"github.com/koyif/cardbank/internal/store"
	"github.com/koyif/cardbank/internal/stub"
	"github.com/koyif/cardbank/internal/workflow"
	"github.com/koyif/cardbank/pkg/logger"
)

// App wires the gate, client, store and the two workflow instances, and
// owns the session identity for the lifetime of the process.
type App struct {
	Config *config.Config

	gate     *session.Gate
	client   *client.Client
	store    *store.Store
	topup    *workflow.Workflow
	withdraw *workflow.Workflow

	identity *domain.SessionIdentity

	demoServer   *http.Server
	demoListener net.Listener
}

func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.DemoMode {
		if err := a.startDemoBackend(); err != nil {
			return nil, err
		}
	}

	gate, err := session.New(session.DemoCredentials(), cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	a.gate = gate

	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	a.client = c

	a.store = store.New(c)
	a.topup = workflow.New(domain.KindTopup, c, a.store)
	a.withdraw = workflow.New(domain.KindWithdraw, c, a.store)

	return a, nil
}

// startDemoBackend serves the in-process stub on a loopback port and points
// the client at it.
func (a *App) startDemoBackend() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("error starting demo backend: %w", err)
	}

	backend := stub.New(a.Config.PrivateKey)
	server := &http.Server{Handler: backend.Router()}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("demo backend error", logger.Error(err))
		}
	}()

	a.demoServer = server
	a.demoListener = listener
	a.Config.BackendAddress = fmt.Sprintf("http://%s/api", listener.Addr())

	logger.Log.Info("demo backend started", logger.String("address", a.Config.BackendAddress))

	return nil
}

// Close shuts down the demo backend, if one is running.
func (a *App) Close(ctx context.Context) error {
	if a.demoServer == nil {
		return nil
	}

	return a.demoServer.Shutdown(ctx)
}

// requestContext threads the current identity into outgoing requests.
func (a *App) requestContext(ctx context.Context) context.Context {
	if a.identity == nil {
		return ctx
	}

	return session.WithIdentity(ctx, a.identity)
}
