package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dine-server/models"
)

// Mongo implements Store over two collections: users and restaurants.
type Mongo struct {
	users       *mongo.Collection
	restaurants *mongo.Collection
}

func NewMongo(ctx context.Context, client *mongo.Client, dbName string) (*Mongo, error) {
	db := client.Database(dbName)
	m := &Mongo{
		users:       db.Collection("users"),
		restaurants: db.Collection("restaurants"),
	}

	// Ensure username and email stay globally unique
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := m.users.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Msg("failed to create unique indexes on users")
	}

	return m, nil
}

func (m *Mongo) InsertUser(ctx context.Context, user *models.User) error {
	// Mint the string _id here; the driver would otherwise insert with an
	// ObjectId that no string-keyed lookup can address.
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := m.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *Mongo) UserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"refresh_token": token})
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return m.findUsers(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *Mongo) EventHolders(ctx context.Context, eventID string) ([]models.User, error) {
	return m.findUsers(ctx, bson.M{"events.event_id": eventID})
}

func (m *Mongo) UsersWithMessages(ctx context.Context, userID string) ([]models.User, error) {
	return m.findUsers(ctx, bson.M{"$or": bson.A{
		bson.M{"messages.sender": userID},
		bson.M{"messages.recipient": userID},
	}})
}

func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.findUsers(ctx, bson.M{})
}

func (m *Mongo) findUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := m.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUser replaces the whole document, mirroring the read-modify-write cycle
// the services perform. The upsert covers documents created outside Mongo.
func (m *Mongo) SaveUser(ctx context.Context, user *models.User) error {
	_, err := m.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) DeleteUser(ctx context.Context, id string) error {
	res, err := m.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) InsertRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	_, err := m.restaurants.InsertOne(ctx, restaurant)
	return err
}

func (m *Mongo) RestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := m.restaurants.FindOne(ctx, bson.M{"_id": id}).Decode(&restaurant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (m *Mongo) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return m.findRestaurants(ctx, bson.M{})
}

func (m *Mongo) SearchRestaurants(ctx context.Context, search string, filters map[string]string) ([]models.Restaurant, error) {
	var clauses bson.A
	if search != "" {
		pattern := bson.M{"$regex": ".*" + regexp.QuoteMeta(search) + ".*", "$options": "i"}
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"categories.title": pattern},
		}})
	}
	for field, value := range filters {
		clauses = append(clauses, bson.M{field: bson.M{"$regex": ".*" + regexp.QuoteMeta(value) + ".*", "$options": "i"}})
	}
	filter := bson.M{}
	if len(clauses) > 0 {
		filter = bson.M{"$and": clauses}
	}
	return m.findRestaurants(ctx, filter)
}

func (m *Mongo) findRestaurants(ctx context.Context, filter bson.M) ([]models.Restaurant, error) {
	cursor, err := m.restaurants.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var restaurants []models.Restaurant
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (m *Mongo) SaveRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	_, err := m.restaurants.ReplaceOne(ctx, bson.M{"_id": restaurant.ID}, restaurant, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) DeleteRestaurant(ctx context.Context, id string) error {
	res, err := m.restaurants.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
