package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Not exposed
	RealName       string    `json:"realname"`
	Email          string    `json:"email"`
	Language       string    `json:"language"`
	School         string    `json:"school"`
	Standard       string    `json:"standard"`
	Board          string    `json:"board"`
	Country        string    `json:"country"`
	State          string    `json:"state"`
	City           string    `json:"city"`
	UserType       string    `json:"usertype"`
	Coins          int       `json:"coins"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.UserType == RoleAdmin
}
