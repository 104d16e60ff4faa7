package models

import "time"

type User struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	Username      string         `json:"username" bson:"username"`
	Email         string         `json:"email" bson:"email"`
	PasswordHash  string         `json:"-" bson:"password_hash"`
	RefreshToken  string         `json:"-" bson:"refresh_token,omitempty"`
	DisplayName   string         `json:"displayname" bson:"displayname,omitempty"`
	ProfileImg    string         `json:"profileimg" bson:"profileimg,omitempty"`
	Location      string         `json:"location" bson:"location,omitempty"`
	About         string         `json:"about" bson:"about,omitempty"`
	Friends       []string       `json:"friends" bson:"friends"`
	Favorites     []string       `json:"favorites" bson:"favorites"`
	FriendInvites []FriendInvite `json:"friend_invites" bson:"friend_invites"`
	Messages      []Message      `json:"messages" bson:"messages"`
	Events        []Event        `json:"events" bson:"events"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
}

// Card is the trimmed projection of a user shown on other users' pages.
func (u *User) Card() ProfileCard {
	return ProfileCard{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		ProfileImg:  u.ProfileImg,
	}
}

type ProfileCard struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
	ProfileImg  string `json:"profileimg"`
}

// FriendInvite is embedded in the recipient's document only.
type FriendInvite struct {
	ID        string    `json:"id" bson:"id"`
	Sender    string    `json:"sender" bson:"sender"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Message is embedded in the recipient's document only; the sender keeps no copy.
type Message struct {
	ID        string    `json:"id" bson:"id"`
	Sender    string    `json:"sender" bson:"sender"`
	Recipient string    `json:"recipient" bson:"recipient"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Event is duplicated into every participant's document. EventID is the shared
// correlation id; the fanned-out copies carry no identity of their own.
type Event struct {
	EventID      string    `json:"event_id" bson:"event_id"`
	Restaurant   string    `json:"restaurant" bson:"restaurant"`
	Participants []string  `json:"participants" bson:"participants"`
	Date         time.Time `json:"date" bson:"date"`
	CreatedBy    string    `json:"created_by" bson:"created_by"`
}
