package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dine-server/config"
	"dine-server/handlers"
	"dine-server/middleware"
	"dine-server/services"
	"dine-server/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	st, err := store.NewMongo(ctx, client, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// Services and handlers
	authService := services.NewAuthService(st, cfg.JWTSecret)
	userService := services.NewUserService(st, redisClient)
	relationService := services.NewRelationService(st, redisClient)
	restaurantService := services.NewRestaurantService(st)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, relationService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)

	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RecoveryMiddleware())

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/restaurants", http.StatusFound)
	}).Methods("GET")

	// Public user routes
	usersPublic := r.PathPrefix("/users").Subrouter()
	usersPublic.HandleFunc("/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	usersPublic.HandleFunc("/login", authHandler.Login).Methods("POST", "OPTIONS")
	usersPublic.HandleFunc("/refresh", authHandler.Refresh).Methods("GET", "OPTIONS")

	// Protected user routes
	users := r.PathPrefix("/users").Subrouter()
	users.Use(middleware.JWTMiddleware(authService))
	users.HandleFunc("", userHandler.Index).Methods("GET", "OPTIONS")
	users.HandleFunc("/id/{id}", userHandler.GetByID).Methods("GET", "OPTIONS")
	users.HandleFunc("/username/{username}", userHandler.GetByUsername).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/profileCard", userHandler.ProfileCard).Methods("GET", "OPTIONS")

	// Fan-out routes before the variable ones so "events" and "messages" do
	// not match as user ids
	users.HandleFunc("/events/create", userHandler.CreateEvent).Methods("POST", "OPTIONS")
	users.HandleFunc("/events/edit", userHandler.EditEvent).Methods("PUT", "OPTIONS")
	users.HandleFunc("/events/{eventId}", userHandler.DeleteEvent).Methods("DELETE", "OPTIONS")
	users.HandleFunc("/messages/new", userHandler.SendMessage).Methods("POST", "OPTIONS")

	users.HandleFunc("/{userId}/friendInvites", userHandler.FriendInvites).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/friendInvites", userHandler.CreateFriendInvite).Methods("POST", "OPTIONS")
	users.HandleFunc("/{userId}/friendInvites/{inviteId}", userHandler.DeleteFriendInvite).Methods("DELETE", "OPTIONS")
	users.HandleFunc("/{userId}/friends", userHandler.Friends).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/friends/{friendId}", userHandler.AddFriend).Methods("POST", "OPTIONS")
	users.HandleFunc("/{userId}/friends/{friendId}", userHandler.RemoveFriend).Methods("DELETE", "OPTIONS")
	users.HandleFunc("/{userId}/favorites", userHandler.Favorites).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/favorites/{restaurantId}", userHandler.AddFavorite).Methods("POST", "OPTIONS")
	users.HandleFunc("/{userId}/favorites/{restaurantId}", userHandler.RemoveFavorite).Methods("DELETE", "OPTIONS")
	users.HandleFunc("/{userId}/messages", userHandler.Messages).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/messages/all", userHandler.MessageThreads).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/messages/{friendId}", userHandler.MessageThread).Methods("GET", "OPTIONS")
	users.HandleFunc("/{userId}/messages/{messageId}", userHandler.DeleteMessage).Methods("DELETE", "OPTIONS")
	users.HandleFunc("/{userId}/events", userHandler.Events).Methods("GET", "OPTIONS")
	users.HandleFunc("/{id}", userHandler.Update).Methods("PUT", "OPTIONS")
	users.HandleFunc("/{id}", userHandler.Delete).Methods("DELETE", "OPTIONS")

	// Restaurant routes; reviews require a token
	restaurants := r.PathPrefix("/restaurants").Subrouter()
	restaurants.HandleFunc("", restaurantHandler.Index).Methods("GET", "OPTIONS")
	restaurants.HandleFunc("", restaurantHandler.Create).Methods("POST", "OPTIONS")
	restaurants.HandleFunc("/results/{searchString}", restaurantHandler.Search).Methods("GET", "OPTIONS")
	restaurants.HandleFunc("/{id}", restaurantHandler.Show).Methods("GET", "OPTIONS")
	restaurants.HandleFunc("/{id}", restaurantHandler.Update).Methods("PUT", "OPTIONS")
	restaurants.HandleFunc("/{id}", restaurantHandler.Delete).Methods("DELETE", "OPTIONS")
	restaurants.HandleFunc("/{id}/userLikes", restaurantHandler.UserLikes).Methods("GET", "OPTIONS")

	reviews := r.PathPrefix("/restaurants").Subrouter()
	reviews.Use(middleware.JWTMiddleware(authService))
	reviews.HandleFunc("/{restaurantId}/reviews", restaurantHandler.Reviews).Methods("GET", "OPTIONS")
	reviews.HandleFunc("/{restaurantId}/reviews", restaurantHandler.CreateReview).Methods("POST", "OPTIONS")
	reviews.HandleFunc("/{restaurantId}/reviews/{reviewId}", restaurantHandler.DeleteReview).Methods("DELETE", "OPTIONS")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
