package domain

import "time"

// Membership roles. An owner membership is created together with its room
// and is never deleted directly; the room has to be deleted instead.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Membership grants a user a role inside a room. Exactly one row may exist
// per (room, user) pair, enforced by the composite unique index.
type Membership struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RoomID   uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"room_id"`
	UserID   uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"user_id"`
	Role     string    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (Membership) TableName() string { return "room_members" }
