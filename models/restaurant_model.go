package models

import "time"

type Restaurant struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	Name         string     `json:"name" bson:"name"`
	ImageURL     string     `json:"image_url" bson:"image_url,omitempty"`
	URL          string     `json:"url" bson:"url,omitempty"`
	DisplayPhone string     `json:"display_phone" bson:"display_phone,omitempty"`
	Price        string     `json:"price" bson:"price,omitempty"`
	Categories   []Category `json:"categories" bson:"categories"`
	Location     Location   `json:"location" bson:"location"`
	Reviews      []Review   `json:"reviews" bson:"reviews"`
	UserLikes    []string   `json:"user_likes" bson:"user_likes"`
}

type Category struct {
	Title string `json:"title" bson:"title"`
}

type Location struct {
	Address string `json:"address1" bson:"address1,omitempty"`
	City    string `json:"city" bson:"city,omitempty"`
	State   string `json:"state" bson:"state,omitempty"`
	ZipCode string `json:"zip_code" bson:"zip_code,omitempty"`
	Country string `json:"country" bson:"country,omitempty"`
}

// Review is embedded in its restaurant; Reviewer references a user id.
type Review struct {
	ID        string    `json:"id" bson:"id"`
	Stars     int       `json:"stars" bson:"stars"`
	Body      string    `json:"body" bson:"body"`
	Reviewer  string    `json:"reviewer" bson:"reviewer"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// RestaurantDetail is the show-page projection of a restaurant.
type RestaurantDetail struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	ImageURL     string     `json:"image_url"`
	DisplayPhone string     `json:"display_phone"`
	Price        string     `json:"price"`
	Categories   []Category `json:"categories"`
	Location     Location   `json:"location"`
}

func (r *Restaurant) Detail() RestaurantDetail {
	return RestaurantDetail{
		ID:           r.ID,
		Name:         r.Name,
		ImageURL:     r.ImageURL,
		DisplayPhone: r.DisplayPhone,
		Price:        r.Price,
		Categories:   r.Categories,
		Location:     r.Location,
	}
}
