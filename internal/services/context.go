package services

import "context"

type contextKey string

const (
	operationIDKey contextKey = "operation_id"
	operationKey   contextKey = "operation"
	rootKey        contextKey = "sandbox_root"
)

// WithOperationID stamps the per-call correlation identifier on the context.
func WithOperationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, operationIDKey, id)
}

// OperationIDFromContext extracts the per-call correlation identifier.
func OperationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operationIDKey).(string)
	return id, ok && id != ""
}

// WithOperation stamps the engine operation name (list, apply_plan, ...).
func WithOperation(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, name)
}

// OperationFromContext extracts the engine operation name.
func OperationFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(operationKey).(string)
	return name, ok && name != ""
}

// WithRoot stamps the sandbox root the operation targets.
func WithRoot(ctx context.Context, root string) context.Context {
	if root == "" {
		return ctx
	}
	return context.WithValue(ctx, rootKey, root)
}

// RootFromContext extracts the sandbox root the operation targets.
func RootFromContext(ctx context.Context) (string, bool) {
	root, ok := ctx.Value(rootKey).(string)
	return root, ok && root != ""
}
