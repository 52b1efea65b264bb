// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users sign up either with an email and password or through GitHub. A
// password user has GitHubID == 0; a GitHub user has an empty PasswordHash.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never leave the server. The "-" tag tells encoding/json to
// skip the field entirely, so even if a handler accidentally writes a full
// User to the response, the hash is not in it. Repository lookups used by the
// auth guard do not even select the column.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"githubId,omitempty"` // GitHub's numeric user ID
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
