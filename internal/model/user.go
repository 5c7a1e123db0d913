package model

import "time"

// User represents a registered hotel user.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	PhoneNumber  *string   `json:"phoneNumber" gorm:"size:32"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"<-:create"`
}

// WithoutPassword returns a copy of the user with the password hash cleared.
func (u User) WithoutPassword() *User {
	u.PasswordHash = ""
	return &u
}

// UserPatch holds the fields a user may change on their own record. Nil means unchanged.
// Password is plaintext; callers hash it and set PasswordHash themselves.
type UserPatch struct {
	Email       *string
	Password    *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// ApplyTo merges the non-nil fields into u. Password is not touched.
func (p UserPatch) ApplyTo(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = p.PhoneNumber
	}
}
