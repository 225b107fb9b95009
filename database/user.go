package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents a registered account.
// The password is only ever stored as a salted one-way hash.
// RememberToken, when set, authenticates a returning browser together with
// the user ID; the session and cookies only carry copies of ID and Username.
type User struct {
	gorm.Model
	Username      string `gorm:"uniqueIndex;not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	PasswordHash  string `gorm:"not null" json:"-"`
	FullName      string
	Bio           string
	Website       string
	RememberToken *string
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		err = translateError(err)
		if err != ErrDuplicate {
			log.Error("failed to create user", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByIDAndToken resolves the remember-me credential pair. Both values
// must match exactly; a user without a stored token never matches.
func (c *Client) GetUserByIDAndToken(ctx context.Context, id uint, token string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("id = ? AND remember_token = ?", id, token).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by remember token", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

// SetRememberToken persists a fresh remember token for the user. A nil token
// invalidates persistent logins for the account.
func (c *Client) SetRememberToken(ctx context.Context, userID uint, token *string) error {
	if err := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("remember_token", token).Error; err != nil {
		log.Error("failed to set remember token", "error", err)
		return err
	}
	return nil
}

// UpdateProfile overwrites the free-text profile fields. Empty values are
// stored as submitted.
func (c *Client) UpdateProfile(ctx context.Context, userID uint, fullName, bio, website string) error {
	updates := map[string]any{
		"full_name": fullName,
		"bio":       bio,
		"website":   website,
	}
	if err := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		log.Error("failed to update profile", "error", err)
		return err
	}
	return nil
}

func (c *Client) UpdatePasswordHash(ctx context.Context, userID uint, hash string) error {
	if err := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("password_hash", hash).Error; err != nil {
		log.Error("failed to update password hash", "error", err)
		return err
	}
	return nil
}
