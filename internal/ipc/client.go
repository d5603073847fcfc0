package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"folio/internal/plan"
)

// Client provides RPC access to a running foliod.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// List fetches a directory snapshot.
func (c *Client) List(path string) (*ListResponse, error) {
	var resp ListResponse
	if err := c.client.Call("Folio.List", ListRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindDuplicates runs a duplicate scan.
func (c *Client) FindDuplicates(path string, recursive bool) (*DuplicatesResponse, error) {
	var resp DuplicatesResponse
	if err := c.client.Call("Folio.FindDuplicates", DuplicatesRequest{Path: path, Recursive: recursive}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlanAlpha generates a normalization plan.
func (c *Client) PlanAlpha(path string) (*PlanResponse, error) {
	var resp PlanResponse
	if err := c.client.Call("Folio.PlanAlpha", PlanRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ApplyPlan executes or dry-runs a rename plan.
func (c *Client) ApplyPlan(path string, items []plan.Item, dryRun bool) (*ApplyResponse, error) {
	var resp ApplyResponse
	if err := c.client.Call("Folio.ApplyPlan", ApplyRequest{Path: path, Items: items, DryRun: dryRun}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OrganizeByType moves top-level files into extension subfolders.
func (c *Client) OrganizeByType(path string, dryRun bool) (*OrganizeResponse, error) {
	var resp OrganizeResponse
	if err := c.client.Call("Folio.OrganizeByType", OrganizeByTypeRequest{Path: path, DryRun: dryRun}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OrganizeByCategory moves classifier-included files into a category folder.
func (c *Client) OrganizeByCategory(path, description string, dryRun bool) (*OrganizeResponse, error) {
	var resp OrganizeResponse
	if err := c.client.Call("Folio.OrganizeByCategory", OrganizeByCategoryRequest{Path: path, Description: description, DryRun: dryRun}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AuditRecent fetches recent journal entries.
func (c *Client) AuditRecent(limit int) (*AuditResponse, error) {
	var resp AuditResponse
	if err := c.client.Call("Folio.AuditRecent", AuditRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Folio.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call("Folio.Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
