package sqldb

import (
	"context"
	"time"

	"github.com/dkeye/GroupChat/internal/domain"
	"gorm.io/gorm/clause"
)

// The group and account CRUD lives in another service. These helpers keep
// the local tables in sync with it and back the tests.

func (s *Store) UpsertUser(ctx context.Context, a domain.Author) error {
	model := userModel{
		ID:        string(a.ID),
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		AvatarURL: a.AvatarURL,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "avatar_url", "updated_at"}),
	}).Create(&model).Error
}

func (s *Store) UpsertRoom(ctx context.Context, r domain.Room) error {
	model := groupModel{ID: string(r.ID), Name: string(r.Name)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&model).Error
}

func (s *Store) AddMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	model := memberModel{GroupID: string(roomID), UserID: string(userID), JoinedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

func (s *Store) RemoveMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	return s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", string(roomID), string(userID)).
		Delete(&memberModel{}).Error
}
