package feed

import "time"

type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Message   string    `gorm:"not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`

	// Joined from users; tombstoned client-side when the author is gone.
	UserName string `gorm:"-" json:"user_name,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}

type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id"`
	Note      string    `gorm:"not null" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (Note) TableName() string {
	return "notes"
}

type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Detail    string    `gorm:"not null" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
