package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"dine-server/models"
	"dine-server/store"
	"dine-server/utils/errors"
)

const userCacheTTL = 24 * time.Hour

// UserService serves single-document reads and profile updates. Denormalized
// relationship collections are never written here; those go through
// RelationService.
type UserService struct {
	store store.Store
	cache *redis.Client
}

type UpdateProfileInput struct {
	DisplayName *string `json:"displayname"`
	ProfileImg  *string `json:"profileimg"`
	Location    *string `json:"location"`
	About       *string `json:"about"`
}

func NewUserService(st store.Store, cache *redis.Client) *UserService {
	return &UserService{store: st, cache: cache}
}

// GetUser reads through the Redis cache and falls back to the store.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, "user:"+userID).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
			log.Warn().Str("user_id", userID).Msg("dropping unreadable cached user")
		}
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(user); err == nil {
			s.cache.Set(ctx, "user:"+userID, payload, userCacheTTL)
		}
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) ProfileCard(ctx context.Context, userID string) (models.ProfileCard, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.ProfileCard{}, err
	}
	return user.Card(), nil
}

// Friends returns the profile cards of a user's friends.
func (s *UserService) Friends(ctx context.Context, userID string) ([]models.ProfileCard, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.store.UsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to load friends", 500)
	}
	cards := make([]models.ProfileCard, 0, len(friends))
	for i := range friends {
		cards = append(cards, friends[i].Card())
	}
	return cards, nil
}

// Favorites returns the detail projection of a user's favorite restaurants.
func (s *UserService) Favorites(ctx context.Context, userID string) ([]models.RestaurantDetail, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := make([]models.RestaurantDetail, 0, len(user.Favorites))
	for _, id := range user.Favorites {
		restaurant, err := s.store.RestaurantByID(ctx, id)
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, errors.Wrap(err, "DB_ERROR", "Failed to load favorites", 500)
		}
		details = append(details, restaurant.Detail())
	}
	return details, nil
}

func (s *UserService) Events(ctx context.Context, userID string) ([]models.Event, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Events, nil
}

func (s *UserService) FriendInvites(ctx context.Context, userID string) ([]models.FriendInvite, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.FriendInvites, nil
}

// Messages returns a user's inbox.
func (s *UserService) Messages(ctx context.Context, userID string) ([]models.Message, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Messages, nil
}

// MessageThreads gathers every message involving the user, wherever it is
// stored. Messages live only on recipients, so this is a field-match scan.
func (s *UserService) MessageThreads(ctx context.Context, userID string) ([]models.Message, error) {
	holders, err := s.store.UsersWithMessages(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to load message threads", 500)
	}
	var messages []models.Message
	for i := range holders {
		for _, msg := range holders[i].Messages {
			if msg.Sender == userID || msg.Recipient == userID {
				messages = append(messages, msg)
			}
		}
	}
	return messages, nil
}

// MessageThread returns the conversation between two users by merging both
// inboxes and keeping messages either of them sent.
func (s *UserService) MessageThread(ctx context.Context, userID, friendID string) ([]models.Message, error) {
	users, err := s.store.UsersByIDs(ctx, []string{userID, friendID})
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to load message thread", 500)
	}
	var messages []models.Message
	for i := range users {
		for _, msg := range users[i].Messages {
			if msg.Sender == userID || msg.Sender == friendID {
				messages = append(messages, msg)
			}
		}
	}
	return messages, nil
}

// UpdateProfile changes profile fields only; relationship collections and
// credentials are out of reach here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.ProfileImg != nil {
		user.ProfileImg = *input.ProfileImg
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.About != nil {
		user.About = *input.About
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to update user", 500)
	}
	s.invalidate(ctx, userID)
	return user, nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "user:"+userID).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate user cache")
	}
}
