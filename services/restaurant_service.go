package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"dine-server/models"
	"dine-server/store"
	"dine-server/utils/errors"
)

type RestaurantService struct {
	store store.Store
}

func NewRestaurantService(st store.Store) *RestaurantService {
	return &RestaurantService{store: st}
}

func (s *RestaurantService) Create(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if restaurant.Name == "" {
		return nil, errors.ErrInvalidInput
	}
	if restaurant.Categories == nil {
		restaurant.Categories = []models.Category{}
	}
	restaurant.Reviews = []models.Review{}
	restaurant.UserLikes = []string{}

	if err := s.store.InsertRestaurant(ctx, restaurant); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to create restaurant", 500)
	}
	log.Info().Str("restaurant_id", restaurant.ID).Str("name", restaurant.Name).Msg("restaurant created")
	return restaurant, nil
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, err := s.store.RestaurantByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return restaurant, nil
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.store.ListRestaurants(ctx)
}

// Search matches the search string against names and category titles, ANDed
// with field filters from the query string. The frontend sends the sentinel
// "no-search-string" for filter-only searches.
// searchFilterFields are the only query-parameter filters a search accepts.
// Unknown keys are dropped before the store sees them, so callers cannot
// steer queries at arbitrary document fields.
var searchFilterFields = map[string]bool{
	"name":              true,
	"price":             true,
	"categories.title":  true,
	"location.city":     true,
	"location.state":    true,
	"location.zip_code": true,
}

func (s *RestaurantService) Search(ctx context.Context, search string, filters map[string]string) ([]models.Restaurant, error) {
	if search == "no-search-string" {
		search = ""
	}
	allowed := make(map[string]string, len(filters))
	for field, value := range filters {
		if searchFilterFields[field] {
			allowed[field] = value
		}
	}
	return s.store.SearchRestaurants(ctx, search, allowed)
}

// UserLikes resolves the ids mirrored from User.favorites into profile cards.
func (s *RestaurantService) UserLikes(ctx context.Context, id string) ([]models.ProfileCard, error) {
	restaurant, err := s.store.RestaurantByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	users, err := s.store.UsersByIDs(ctx, restaurant.UserLikes)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to load user likes", 500)
	}
	cards := make([]models.ProfileCard, 0, len(users))
	for i := range users {
		cards = append(cards, users[i].Card())
	}
	return cards, nil
}

// Update replaces top-level fields; the embedded reviews and the userLikes
// mirror are preserved from the stored document.
func (s *RestaurantService) Update(ctx context.Context, id string, input *models.Restaurant) (*models.Restaurant, error) {
	restaurant, err := s.store.RestaurantByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	input.ID = restaurant.ID
	input.Reviews = restaurant.Reviews
	input.UserLikes = restaurant.UserLikes
	if err := s.store.SaveRestaurant(ctx, input); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to update restaurant", 500)
	}
	return input, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRestaurant(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

// Reviews
// =======================================================================

func (s *RestaurantService) Reviews(ctx context.Context, restaurantID string) ([]models.Review, error) {
	restaurant, err := s.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return nil, notFound(err)
	}
	return restaurant.Reviews, nil
}

func (s *RestaurantService) AddReview(ctx context.Context, restaurantID, reviewerID string, stars int, body string) ([]models.Review, error) {
	if stars < 1 || stars > 5 {
		return nil, errors.ErrInvalidInput
	}
	restaurant, err := s.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return nil, notFound(err)
	}

	restaurant.Reviews = append(restaurant.Reviews, models.Review{
		ID:        uuid.NewString(),
		Stars:     stars,
		Body:      body,
		Reviewer:  reviewerID,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.store.SaveRestaurant(ctx, restaurant); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to add review", 500)
	}
	return restaurant.Reviews, nil
}

func (s *RestaurantService) DeleteReview(ctx context.Context, restaurantID, reviewID string) ([]models.Review, error) {
	restaurant, err := s.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return nil, notFound(err)
	}

	kept := restaurant.Reviews[:0]
	for _, review := range restaurant.Reviews {
		if review.ID != reviewID {
			kept = append(kept, review)
		}
	}
	if len(kept) == len(restaurant.Reviews) {
		return restaurant.Reviews, nil
	}
	restaurant.Reviews = kept
	if err := s.store.SaveRestaurant(ctx, restaurant); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "Failed to delete review", 500)
	}
	return restaurant.Reviews, nil
}
