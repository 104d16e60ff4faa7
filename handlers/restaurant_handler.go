package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"dine-server/middleware"
	"dine-server/models"
	"dine-server/services"
	"dine-server/utils/errors"
)

type RestaurantHandler struct {
	restaurantService *services.RestaurantService
}

func NewRestaurantHandler(restaurantService *services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

// Index handles GET /restaurants
func (h *RestaurantHandler) Index(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.restaurantService.List(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

// Show handles GET /restaurants/{id} with the detail projection
func (h *RestaurantHandler) Show(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.restaurantService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant.Detail())
}

// Create handles POST /restaurants
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	restaurant, err := h.restaurantService.Create(r.Context(), &input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant)
}

// Update handles PUT /restaurants/{id}
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	restaurant, err := h.restaurantService.Update(r.Context(), mux.Vars(r)["id"], &input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// Delete handles DELETE /restaurants/{id}
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.restaurantService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Restaurant deleted"})
}

// UserLikes handles GET /restaurants/{id}/userLikes
func (h *RestaurantHandler) UserLikes(w http.ResponseWriter, r *http.Request) {
	cards, err := h.restaurantService.UserLikes(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// Search handles GET /restaurants/results/{searchString}; every query
// parameter becomes a field filter.
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	restaurants, err := h.restaurantService.Search(r.Context(), mux.Vars(r)["searchString"], filters)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

// Reviews
// =======================================================================

// Reviews handles GET /restaurants/{restaurantId}/reviews
func (h *RestaurantHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.restaurantService.Reviews(r.Context(), mux.Vars(r)["restaurantId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// CreateReview handles POST /restaurants/{restaurantId}/reviews
func (h *RestaurantHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	var input struct {
		Stars int    `json:"stars"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	reviews, err := h.restaurantService.AddReview(r.Context(), mux.Vars(r)["restaurantId"], reviewer, input.Stars, input.Body)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reviews)
}

// DeleteReview handles DELETE /restaurants/{restaurantId}/reviews/{reviewId}
func (h *RestaurantHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reviews, err := h.restaurantService.DeleteReview(r.Context(), vars["restaurantId"], vars["reviewId"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
