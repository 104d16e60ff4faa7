package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dine-server/middleware"
	"dine-server/models"
	"dine-server/services"
	"dine-server/store"
)

type userFixture struct {
	router *mux.Router
	store  *store.Memory
	auth   *services.AuthService
}

func newUserTestRouter(t *testing.T) *userFixture {
	t.Helper()
	st := store.NewMemory()
	authService := services.NewAuthService(st, "handler-test-secret")
	userService := services.NewUserService(st, nil)
	relationService := services.NewRelationService(st, nil)
	userHandler := NewUserHandler(userService, relationService)

	r := mux.NewRouter()
	users := r.PathPrefix("/users").Subrouter()
	users.Use(middleware.JWTMiddleware(authService))
	users.HandleFunc("/events/create", userHandler.CreateEvent).Methods("POST")
	users.HandleFunc("/messages/new", userHandler.SendMessage).Methods("POST")
	users.HandleFunc("/{userId}/friends", userHandler.Friends).Methods("GET")
	users.HandleFunc("/{userId}/friends/{friendId}", userHandler.AddFriend).Methods("POST")
	users.HandleFunc("/{userId}/friends/{friendId}", userHandler.RemoveFriend).Methods("DELETE")
	users.HandleFunc("/{userId}/favorites/{restaurantId}", userHandler.AddFavorite).Methods("POST")

	return &userFixture{router: r, store: st, auth: authService}
}

func (f *userFixture) signupAndLogin(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	user, err := f.auth.Signup(ctx, username, username+"@example.com", "pw-"+username)
	require.NoError(t, err)
	token, _, err := f.auth.Login(ctx, username, "pw-"+username)
	require.NoError(t, err)
	return user, token
}

func (f *userFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	f := newUserTestRouter(t)
	alice, _ := f.signupAndLogin(t, "alice")

	rec := f.do(t, "GET", "/users/"+alice.ID+"/friends", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, "GET", "/users/"+alice.ID+"/friends", "garbage-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFriendAddRemoveOverHTTP(t *testing.T) {
	f := newUserTestRouter(t)
	ctx := context.Background()
	alice, token := f.signupAndLogin(t, "alice")
	bob, _ := f.signupAndLogin(t, "bob")

	rec := f.do(t, "POST", "/users/"+alice.ID+"/friends/"+bob.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	gotAlice, err := f.store.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	gotBob, err := f.store.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Contains(t, gotAlice.Friends, bob.ID)
	assert.Contains(t, gotBob.Friends, alice.ID)

	rec = f.do(t, "DELETE", "/users/"+alice.ID+"/friends/"+bob.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	gotAlice, err = f.store.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	gotBob, err = f.store.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotAlice.Friends)
	assert.Empty(t, gotBob.Friends)
}

func TestFriendAddUnknownFriend(t *testing.T) {
	f := newUserTestRouter(t)
	alice, token := f.signupAndLogin(t, "alice")

	rec := f.do(t, "POST", "/users/"+alice.ID+"/friends/no-such-user", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoriteAddOverHTTP(t *testing.T) {
	f := newUserTestRouter(t)
	ctx := context.Background()
	alice, token := f.signupAndLogin(t, "alice")

	pizza := &models.Restaurant{Name: "Pizza Place", UserLikes: []string{}}
	require.NoError(t, f.store.InsertRestaurant(ctx, pizza))

	rec := f.do(t, "POST", "/users/"+alice.ID+"/favorites/"+pizza.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	gotPizza, err := f.store.RestaurantByID(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, gotPizza.UserLikes)
}

func TestSendMessageTakesSenderFromToken(t *testing.T) {
	f := newUserTestRouter(t)
	ctx := context.Background()
	alice, token := f.signupAndLogin(t, "alice")
	bob, _ := f.signupAndLogin(t, "bob")

	rec := f.do(t, "POST", "/users/messages/new", token, `{"recipient":"`+bob.ID+`","body":"hey"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var message models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &message))
	assert.Equal(t, alice.ID, message.Sender)

	gotBob, err := f.store.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, gotBob.Messages, 1)
}

func TestCreateEventReturnsCreatorRecord(t *testing.T) {
	f := newUserTestRouter(t)
	alice, token := f.signupAndLogin(t, "alice")
	bob, _ := f.signupAndLogin(t, "bob")

	body := `{"restaurant":"r-1","date":"2025-06-01T19:00:00Z","participants":["` + alice.ID + `","` + bob.ID + `"]}`
	rec := f.do(t, "POST", "/users/events/create", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var creator models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creator))
	assert.Equal(t, alice.ID, creator.ID)
	require.Len(t, creator.Events, 1)
	assert.Equal(t, alice.ID, creator.Events[0].CreatedBy)
}
