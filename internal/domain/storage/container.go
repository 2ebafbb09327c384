// Package storage aggregates the per-domain repositories behind one
// container that handlers receive. Every field is an interface, so
// tests swap in stubs without a database.
package storage

import (
	"voxa/internal/domain/followers"
	"voxa/internal/domain/groups"
	"voxa/internal/domain/likes"
	"voxa/internal/domain/pushtokens"
	"voxa/internal/domain/recommendations"
	"voxa/internal/domain/reviews"
	"voxa/internal/domain/trips"
	"voxa/internal/domain/users"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	Users           users.Store
	Followers       followers.Store
	Reviews         reviews.Store
	Likes           likes.Store
	Groups          groups.Store
	Trips           trips.Store
	Recommendations recommendations.Store
	PushTokens      pushtokens.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		Users:           users.NewRepository(db),
		Followers:       followers.NewRepository(db),
		Reviews:         reviews.NewRepository(db),
		Likes:           likes.NewRepository(db),
		Groups:          groups.NewRepository(db),
		Trips:           trips.NewRepository(db),
		Recommendations: recommendations.NewRepository(db),
		PushTokens:      pushtokens.NewRepository(db),
	}
}
