// Package store is the narrow port over the document store: get-by-id,
// get-by-unique-field, field-match queries, and whole-document saves. No
// multi-document transactions are assumed; every write lands independently.
package store

import (
	"context"
	"errors"

	"dine-server/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByRefreshToken(ctx context.Context, token string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// EventHolders returns every user holding an embedded event copy with the
	// given shared event id.
	EventHolders(ctx context.Context, eventID string) ([]models.User, error)
	// UsersWithMessages returns every user whose embedded message list
	// involves the given user id as sender or recipient.
	UsersWithMessages(ctx context.Context, userID string) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type RestaurantStore interface {
	InsertRestaurant(ctx context.Context, restaurant *models.Restaurant) error
	RestaurantByID(ctx context.Context, id string) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	// SearchRestaurants matches the search string against name and category
	// titles (case-insensitive substring), ANDed with per-field filters.
	// Either argument may be empty.
	SearchRestaurants(ctx context.Context, search string, filters map[string]string) ([]models.Restaurant, error)
	SaveRestaurant(ctx context.Context, restaurant *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, id string) error
}

type Store interface {
	UserStore
	RestaurantStore
}
