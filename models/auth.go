package models

type UserRole string

const (
	RoleOrganizer UserRole = "organizer"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
