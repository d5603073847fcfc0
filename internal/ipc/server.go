// Package ipc exposes the engine over JSON-RPC on a Unix domain socket.
// Engine failures never cross the boundary as raw Go errors; each response
// carries the structured error payload instead.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"folio/internal/engine"
	"folio/internal/logging"
)

// Server accepts RPC connections for a single engine instance.
type Server struct {
	path      string
	engine    *engine.Engine
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. shutdown is
// invoked when a client requests daemon shutdown; it may be nil.
func NewServer(ctx context.Context, path string, eng *engine.Engine, logger *slog.Logger, shutdown func()) (*Server, error) {
	if eng == nil {
		return nil, errors.New("ipc server requires an engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{engine: eng, logger: logger, path: path, shutdown: shutdown}
	if err := rpcServer.RegisterName("Folio", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		engine:    eng,
		logger:    logging.WithComponent(logger, "ipc"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	engine   *engine.Engine
	logger   *slog.Logger
	path     string
	shutdown func()
}

func errorPayload(err error) *engine.ErrorPayload {
	payload := engine.NewErrorPayload(err)
	return &payload
}

func (s *service) List(req ListRequest, resp *ListResponse) error {
	result, err := s.engine.List(context.Background(), req.Path)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Result = &result
	return nil
}

func (s *service) FindDuplicates(req DuplicatesRequest, resp *DuplicatesResponse) error {
	result, err := s.engine.FindDuplicates(context.Background(), req.Path, req.Recursive)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Result = &result
	return nil
}

func (s *service) PlanAlpha(req PlanRequest, resp *PlanResponse) error {
	result, err := s.engine.PlanAlpha(context.Background(), req.Path)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Result = &result
	return nil
}

func (s *service) ApplyPlan(req ApplyRequest, resp *ApplyResponse) error {
	result, err := s.engine.ApplyPlan(context.Background(), req.Path, req.Items, req.DryRun)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Result = &result
	return nil
}

func (s *service) OrganizeByType(req OrganizeByTypeRequest, resp *OrganizeResponse) error {
	result, err := s.engine.OrganizeByType(context.Background(), req.Path, req.DryRun)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Result = &result
	return nil
}

func (s *service) OrganizeByCategory(req OrganizeByCategoryRequest, resp *OrganizeResponse) error {
	result, err := s.engine.OrganizeByCategory(context.Background(), req.Path, req.Description, req.DryRun)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Result = &result
	return nil
}

func (s *service) AuditRecent(req AuditRequest, resp *AuditResponse) error {
	entries, err := s.engine.AuditRecent(context.Background(), req.Limit)
	if err != nil {
		resp.Err = errorPayload(err)
		return nil
	}
	resp.Entries = entries
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.Running = true
	resp.PID = os.Getpid()
	resp.Roots = s.engine.Roots()
	resp.SocketPath = s.path
	resp.AuditEnabled = s.engine.Journal() != nil
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	if s.shutdown != nil {
		resp.Stopping = true
		go s.shutdown()
	}
	return nil
}
