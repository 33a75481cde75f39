package models

import "time"

type Player struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	SkillLevel int       `json:"skill_level" db:"skill_level"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}
