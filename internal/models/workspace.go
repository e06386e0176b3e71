package models

import "time"

// DefaultWorkspaceColor is used when a workspace is created without a color
const DefaultWorkspaceColor = "#7C3AED"

// Workspace groups tasks under a name and display color
type Workspace struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null;uniqueIndex" json:"name"`
	Color    string `gorm:"default:'#7C3AED'" json:"color"`
	Archived bool   `gorm:"default:false" json:"archived"`

	Tasks []Task `gorm:"foreignKey:WorkspaceID" json:"-"`
}
