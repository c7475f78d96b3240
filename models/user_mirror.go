package models

import "time"

// UserMirror is a read-only copy of the auth service's profile data, kept
// fresh by the profile sync worker. It exists so leaderboards and
// achievement feeds can show usernames without a cross-service call per
// request.
type UserMirror struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID string `gorm:"uniqueIndex;not null" json:"external_id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
