package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"dine-server/models"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and local development. It keeps
// the same contract as the Mongo implementation: unique username/email,
// whole-document saves, and substring search semantics.
type Memory struct {
	mu          sync.RWMutex
	users       map[string]models.User
	restaurants map[string]models.Restaurant
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]models.User),
		restaurants: make(map[string]models.Restaurant),
	}
}

func (m *Memory) InsertUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.users[user.ID] = cloneUser(*user)
	return nil
}

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user = cloneUser(user)
	return &user, nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.matchUser(func(u models.User) bool { return u.Username == username })
}

func (m *Memory) UserByRefreshToken(_ context.Context, token string) (*models.User, error) {
	return m.matchUser(func(u models.User) bool { return u.RefreshToken == token })
}

func (m *Memory) matchUser(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	return m.matchUsers(func(u models.User) bool {
		for _, id := range ids {
			if u.ID == id {
				return true
			}
		}
		return false
	}), nil
}

func (m *Memory) EventHolders(_ context.Context, eventID string) ([]models.User, error) {
	return m.matchUsers(func(u models.User) bool {
		for _, ev := range u.Events {
			if ev.EventID == eventID {
				return true
			}
		}
		return false
	}), nil
}

func (m *Memory) UsersWithMessages(_ context.Context, userID string) ([]models.User, error) {
	return m.matchUsers(func(u models.User) bool {
		for _, msg := range u.Messages {
			if msg.Sender == userID || msg.Recipient == userID {
				return true
			}
		}
		return false
	}), nil
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	return m.matchUsers(func(models.User) bool { return true }), nil
}

func (m *Memory) matchUsers(match func(models.User) bool) []models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []models.User
	for _, u := range m.users {
		if match(u) {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (m *Memory) SaveUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = cloneUser(*user)
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) InsertRestaurant(_ context.Context, restaurant *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	m.restaurants[restaurant.ID] = cloneRestaurant(*restaurant)
	return nil
}

func (m *Memory) RestaurantByID(_ context.Context, id string) (*models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	restaurant, ok := m.restaurants[id]
	if !ok {
		return nil, ErrNotFound
	}
	restaurant = cloneRestaurant(restaurant)
	return &restaurant, nil
}

func (m *Memory) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	return m.matchRestaurants(func(models.Restaurant) bool { return true }), nil
}

func (m *Memory) SearchRestaurants(_ context.Context, search string, filters map[string]string) ([]models.Restaurant, error) {
	return m.matchRestaurants(func(r models.Restaurant) bool {
		if search != "" && !matchesSearch(r, search) {
			return false
		}
		for field, value := range filters {
			if !containsFold(fieldValues(r, field), value) {
				return false
			}
		}
		return true
	}), nil
}

func matchesSearch(r models.Restaurant, search string) bool {
	if strings.Contains(strings.ToLower(r.Name), strings.ToLower(search)) {
		return true
	}
	for _, c := range r.Categories {
		if strings.Contains(strings.ToLower(c.Title), strings.ToLower(search)) {
			return true
		}
	}
	return false
}

func fieldValues(r models.Restaurant, field string) []string {
	switch field {
	case "name":
		return []string{r.Name}
	case "price":
		return []string{r.Price}
	case "categories.title":
		var titles []string
		for _, c := range r.Categories {
			titles = append(titles, c.Title)
		}
		return titles
	case "location.city":
		return []string{r.Location.City}
	case "location.state":
		return []string{r.Location.State}
	case "location.zip_code":
		return []string{r.Location.ZipCode}
	default:
		return nil
	}
}

func containsFold(values []string, substr string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

func (m *Memory) matchRestaurants(match func(models.Restaurant) bool) []models.Restaurant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var restaurants []models.Restaurant
	for _, r := range m.restaurants {
		if match(r) {
			restaurants = append(restaurants, cloneRestaurant(r))
		}
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].ID < restaurants[j].ID })
	return restaurants
}

func (m *Memory) SaveRestaurant(_ context.Context, restaurant *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[restaurant.ID] = cloneRestaurant(*restaurant)
	return nil
}

func (m *Memory) DeleteRestaurant(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[id]; !ok {
		return ErrNotFound
	}
	delete(m.restaurants, id)
	return nil
}

// cloneUser deep-copies the embedded collections so callers never alias
// stored state.
func cloneUser(u models.User) models.User {
	u.Friends = append([]string(nil), u.Friends...)
	u.Favorites = append([]string(nil), u.Favorites...)
	u.FriendInvites = append([]models.FriendInvite(nil), u.FriendInvites...)
	u.Messages = append([]models.Message(nil), u.Messages...)
	events := make([]models.Event, len(u.Events))
	for i, ev := range u.Events {
		ev.Participants = append([]string(nil), ev.Participants...)
		events[i] = ev
	}
	u.Events = events
	return u
}

func cloneRestaurant(r models.Restaurant) models.Restaurant {
	r.Categories = append([]models.Category(nil), r.Categories...)
	r.Reviews = append([]models.Review(nil), r.Reviews...)
	r.UserLikes = append([]string(nil), r.UserLikes...)
	return r
}
