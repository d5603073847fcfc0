package main

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/audit"
	"folio/internal/engine"
	"folio/internal/ipc"
	"folio/internal/plan"
)

// operations is the folder-management surface the commands run against. It is
// satisfied by the in-process engine and by the daemon adapter, so every
// command works identically with and without --socket.
type operations interface {
	List(ctx context.Context, path string) (engine.ListResult, error)
	FindDuplicates(ctx context.Context, path string, recursive bool) (engine.DuplicatesResult, error)
	PlanAlpha(ctx context.Context, path string) (engine.PlanResult, error)
	ApplyPlan(ctx context.Context, path string, items []plan.Item, dryRun bool) (engine.ApplyResult, error)
	OrganizeByType(ctx context.Context, path string, dryRun bool) (engine.OrganizeResult, error)
	OrganizeByCategory(ctx context.Context, path, description string, dryRun bool) (engine.OrganizeResult, error)
	AuditRecent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// ensureOperations picks the execution surface for this invocation. When
// --socket is set, calls are routed to the daemon at that socket; otherwise
// a single in-process engine is built.
func (c *commandContext) ensureOperations() (operations, error) {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return &remoteOperations{ctx: c}, nil
	}
	return c.ensureEngine()
}

// remoteOperations runs each call against foliod over the IPC socket. It
// dials per call; the daemon holds no per-client state.
type remoteOperations struct {
	ctx *commandContext
}

// payloadError turns a structured error payload back into a display error.
func payloadError(p *engine.ErrorPayload) error {
	return fmt.Errorf("%s: %s", p.ErrorType, p.ErrorMessage)
}

func (r *remoteOperations) List(_ context.Context, path string) (engine.ListResult, error) {
	var result engine.ListResult
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.List(path)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		result = *resp.Result
		return nil
	})
	return result, err
}

func (r *remoteOperations) FindDuplicates(_ context.Context, path string, recursive bool) (engine.DuplicatesResult, error) {
	var result engine.DuplicatesResult
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.FindDuplicates(path, recursive)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		result = *resp.Result
		return nil
	})
	return result, err
}

func (r *remoteOperations) PlanAlpha(_ context.Context, path string) (engine.PlanResult, error) {
	var result engine.PlanResult
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.PlanAlpha(path)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		result = *resp.Result
		return nil
	})
	return result, err
}

func (r *remoteOperations) ApplyPlan(_ context.Context, path string, items []plan.Item, dryRun bool) (engine.ApplyResult, error) {
	var result engine.ApplyResult
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.ApplyPlan(path, items, dryRun)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		result = *resp.Result
		return nil
	})
	return result, err
}

func (r *remoteOperations) OrganizeByType(_ context.Context, path string, dryRun bool) (engine.OrganizeResult, error) {
	var result engine.OrganizeResult
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.OrganizeByType(path, dryRun)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		result = *resp.Result
		return nil
	})
	return result, err
}

func (r *remoteOperations) OrganizeByCategory(_ context.Context, path, description string, dryRun bool) (engine.OrganizeResult, error) {
	var result engine.OrganizeResult
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.OrganizeByCategory(path, description, dryRun)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		result = *resp.Result
		return nil
	})
	return result, err
}

func (r *remoteOperations) AuditRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	var entries []audit.Entry
	err := r.ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.AuditRecent(limit)
		if err != nil {
			return err
		}
		if resp.Err != nil {
			return payloadError(resp.Err)
		}
		entries = resp.Entries
		return nil
	})
	return entries, err
}
