package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id" bson:"-"`
	Email        string    `db:"email" bson:"email"`
	PasswordHash string    `db:"password_hash" bson:"password"`
	CreatedAt    time.Time `db:"created_at" bson:"createdAt"`
}
