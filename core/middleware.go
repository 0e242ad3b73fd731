// Package core provides the fundamental building blocks of the golem ORM.
// This file defines the middleware system, which allows cross-cutting concerns
// (logging, auditing, etc.) to be applied to ORM operations.
package core

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Operation represents the type of operation being executed by the ORM.
type Operation string

const (
	// OperationFind corresponds to a query (find) operation.
	OperationFind Operation = "find"
	// OperationCount corresponds to a count operation.
	OperationCount Operation = "count"
)

// Handler is the function signature executed by the ORM pipeline.
//
// It receives a context, the operation type, and the query being run.
type Handler func(ctx context.Context, op Operation, query *Query) error

// Middleware is a function that wraps a Handler with additional logic.
//
// Middlewares are chained globally and executed for every operation.
type Middleware func(next Handler) Handler

var (
	middlewareMutex      sync.RWMutex
	globalMiddlewareList []Middleware
)

// Use registers a new global middleware, applied to all operations.
//
// Middlewares run in registration order: the first registered middleware
// wraps every later one.
func Use(mw Middleware) {
	middlewareMutex.Lock()
	defer middlewareMutex.Unlock()
	globalMiddlewareList = append(globalMiddlewareList, mw)
}

// ResetMiddlewares removes every registered middleware.
func ResetMiddlewares() {
	middlewareMutex.Lock()
	defer middlewareMutex.Unlock()
	globalMiddlewareList = nil
}

// runMiddlewares applies the chain of middlewares to the final handler.
func runMiddlewares(final Handler) Handler {
	middlewareMutex.RLock()
	defer middlewareMutex.RUnlock()
	h := final
	for i := len(globalMiddlewareList) - 1; i >= 0; i-- {
		h = globalMiddlewareList[i](h)
	}
	return h
}

// dispatchOperation executes an operation through the global middleware chain.
func dispatchOperation(ctx context.Context, op Operation, query *Query, exec func() error) error {
	handler := runMiddlewares(func(ctx context.Context, op Operation, query *Query) error {
		return exec()
	})
	return handler(ctx, op, query)
}

// DebugMiddleware logs all operations passing through the ORM, with the
// models and joins of the query and the time taken.
//
// Example:
//
//	core.Use(core.DebugMiddleware(slog.Default()))
func DebugMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, op Operation, query *Query) error {
			start := time.Now()
			modelNameList := []string{}
			for _, model := range query.Models() {
				modelNameList = append(modelNameList, model.Name())
			}
			err := next(ctx, op, query)
			attrList := []any{
				slog.String("op", string(op)),
				slog.Any("models", modelNameList),
				slog.Duration("took", time.Since(start)),
			}
			if err != nil {
				logger.DebugContext(ctx, "operation failed", append(attrList, slog.Any("error", err))...)
			} else {
				logger.DebugContext(ctx, "operation succeeded", attrList...)
			}
			return err
		}
	}
}
