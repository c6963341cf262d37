package user

import "time"

// User is both the persisted record and the API projection; the hash
// and creation time never serialize.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the register/login success body.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}
