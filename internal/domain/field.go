package domain

import "time"

// Field is the minimal catalog entry the scheduling core needs: games
// reference a field and approval rights hang off its manager.
type Field struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	ManagerID string    `gorm:"index" json:"manager_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
