package sqldb

import "time"

type userModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	Email     string `gorm:"uniqueIndex;not null"`
	FirstName string
	LastName  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string { return "users" }

type groupModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (groupModel) TableName() string { return "groups" }

type memberModel struct {
	GroupID  string `gorm:"primaryKey;size:64"`
	UserID   string `gorm:"primaryKey;size:64;index"`
	JoinedAt time.Time
}

func (memberModel) TableName() string { return "group_members" }

type messageModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	GroupID   string    `gorm:"index:idx_messages_group_created,priority:1;size:64;not null"`
	AuthorID  string    `gorm:"size:64;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_messages_group_created,priority:2"`
	Author    userModel `gorm:"foreignKey:AuthorID"`
}

func (messageModel) TableName() string { return "messages" }
