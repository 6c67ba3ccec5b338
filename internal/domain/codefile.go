package domain

import "time"

// MainFileName designates the single shared file of a room in the simple
// flow. Rooms get one on first entry with these defaults.
const (
	MainFileName       = "main"
	DefaultFileContent = "// Start coding here..."
	DefaultLanguage    = "javascript"
)

// CodeFile is the shared mutable text buffer of a room. Updates overwrite
// content in place; no version history is retained (last write wins).
type CodeFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"uniqueIndex:idx_room_file;not null" json:"room_id"`
	Name      string    `gorm:"type:varchar(191);uniqueIndex:idx_room_file;not null" json:"name"`
	Content   string    `gorm:"type:mediumtext;not null" json:"content"`
	Language  string    `gorm:"type:varchar(50);not null" json:"language"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
