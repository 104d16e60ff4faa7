package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"dine-server/middleware"
	"dine-server/services"
	"dine-server/utils/errors"
)

type UserHandler struct {
	userService     *services.UserService
	relationService *services.RelationService
}

func NewUserHandler(userService *services.UserService, relationService *services.RelationService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		relationService: relationService,
	}
}

// User reads
// =======================================================================

// Index handles GET /users
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetByID handles GET /users/id/{id}
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetByUsername handles GET /users/username/{username}
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ProfileCard handles GET /users/{userId}/profileCard
func (h *UserHandler) ProfileCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.userService.ProfileCard(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Update handles PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	user, err := h.userService.UpdateProfile(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.relationService.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// Friend invites
// =======================================================================

// FriendInvites handles GET /users/{userId}/friendInvites
func (h *UserHandler) FriendInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.userService.FriendInvites(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

// CreateFriendInvite handles POST /users/{userId}/friendInvites
func (h *UserHandler) CreateFriendInvite(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	var input struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	invite, err := h.relationService.CreateInvite(r.Context(), mux.Vars(r)["userId"], sender, input.Body)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

// DeleteFriendInvite handles DELETE /users/{userId}/friendInvites/{inviteId}
func (h *UserHandler) DeleteFriendInvite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.relationService.DeleteInvite(r.Context(), vars["userId"], vars["inviteId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend invite deleted"})
}

// Friends
// =======================================================================

// Friends handles GET /users/{userId}/friends
func (h *UserHandler) Friends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.userService.Friends(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// AddFriend handles POST /users/{userId}/friends/{friendId}
func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.relationService.AddFriend(r.Context(), vars["userId"], vars["friendId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend gained"})
}

// RemoveFriend handles DELETE /users/{userId}/friends/{friendId}
func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.relationService.RemoveFriend(r.Context(), vars["userId"], vars["friendId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend lost"})
}

// Favorites
// =======================================================================

// Favorites handles GET /users/{userId}/favorites
func (h *UserHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.userService.Favorites(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

// AddFavorite handles POST /users/{userId}/favorites/{restaurantId}
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.relationService.AddFavorite(r.Context(), vars["userId"], vars["restaurantId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favorite created"})
}

// RemoveFavorite handles DELETE /users/{userId}/favorites/{restaurantId}
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.relationService.RemoveFavorite(r.Context(), vars["userId"], vars["restaurantId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favorite deleted"})
}

// Messages
// =======================================================================

// Messages handles GET /users/{userId}/messages
func (h *UserHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.userService.Messages(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// MessageThreads handles GET /users/{userId}/messages/all
func (h *UserHandler) MessageThreads(w http.ResponseWriter, r *http.Request) {
	messages, err := h.userService.MessageThreads(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// MessageThread handles GET /users/{userId}/messages/{friendId}
func (h *UserHandler) MessageThread(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messages, err := h.userService.MessageThread(r.Context(), vars["userId"], vars["friendId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /users/messages/new
func (h *UserHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	var input struct {
		Recipient string `json:"recipient"`
		Body      string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Recipient == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	message, err := h.relationService.SendMessage(r.Context(), sender, input.Recipient, input.Body)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// DeleteMessage handles DELETE /users/{userId}/messages/{messageId}
func (h *UserHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.relationService.DeleteMessage(r.Context(), vars["userId"], vars["messageId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted"})
}

// Events
// =======================================================================

// Events handles GET /users/{userId}/events
func (h *UserHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.userService.Events(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type eventInput struct {
	EventID      string    `json:"event_id"`
	Restaurant   string    `json:"restaurant"`
	Date         time.Time `json:"date"`
	Participants []string  `json:"participants"`
}

// CreateEvent handles POST /users/events/create
func (h *UserHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	creator, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	var input eventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || len(input.Participants) == 0 {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	user, err := h.relationService.CreateEvent(r.Context(), creator, input.Restaurant, input.Date, input.Participants)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// EditEvent handles PUT /users/events/edit
func (h *UserHandler) EditEvent(w http.ResponseWriter, r *http.Request) {
	var input eventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.EventID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	if err := h.relationService.EditEvent(r.Context(), input.EventID, input.Restaurant, input.Date, input.Participants); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event updated"})
}

// DeleteEvent handles DELETE /users/events/{eventId}
func (h *UserHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.relationService.DeleteEvent(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}
