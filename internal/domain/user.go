package domain

import "time"

// User represents a registered account.
type User struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Avatar       string    `bson:"avatar"`
	CreatedAt    time.Time `bson:"date"`
}

// UserSummary is the display projection of a user attached to other aggregates.
type UserSummary struct {
	ID     string
	Name   string
	Avatar string
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
