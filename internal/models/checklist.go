package models

// ChecklistItem is a sub-task entry belonging to exactly one task.
// An ID of zero means the item has not been persisted yet.
type ChecklistItem struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	TaskID    uint   `gorm:"not null;index" json:"task_id"`
	Text      string `gorm:"not null" json:"text"`
	Completed bool   `gorm:"default:false" json:"completed"`
	Position  int    `gorm:"default:0" json:"position"`
}

// IsNew reports whether the item still needs to be inserted
func (c ChecklistItem) IsNew() bool {
	return c.ID == 0
}
