package main

import (
	"context"
	"net/http"

	"voxa/internal/config"
	"voxa/internal/domain/storage"
	"voxa/internal/domain/users"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestApp(store *storage.Container) *application {
	return &application{
		config: config.Config{Env: "test"},
		store:  store,
		logger: zap.NewNop().Sugar(),
	}
}

// withUser simulates what the auth middleware and chi's router put on the
// request context.
func withUser(r *http.Request, u *users.User, urlParams map[string]string) *http.Request {
	ctx := r.Context()
	if u != nil {
		ctx = context.WithValue(ctx, userCtx, u)
	}
	rctx := chi.NewRouteContext()
	for k, v := range urlParams {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}
