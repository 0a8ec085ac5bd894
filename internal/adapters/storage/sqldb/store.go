// Package sqldb is the gorm-backed membership oracle, message store and
// room directory.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrEmptyContent = errors.New("empty message content")

type Store struct {
	db *gorm.DB
}

// Open connects to the configured driver. Migrate is left to the caller.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDBDriver, cfg.Driver)
	}

	// users are owned by the account service and may lag behind messages
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	log.Info().Str("module", "storage.sqldb").Str("driver", cfg.Driver).Msg("database opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&userModel{}, &groupModel{}, &memberModel{}, &messageModel{})
}

// Ping is used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&memberModel{}).
		Where("group_id = ? AND user_id = ?", string(roomID), string(userID)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("membership lookup: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreateMessage(ctx context.Context, roomID domain.RoomID, authorID domain.UserID, content string) (domain.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return domain.ChatMessage{}, ErrEmptyContent
	}
	db := s.db.WithContext(ctx)

	var group groupModel
	if err := db.Select("id").First(&group, "id = ?", string(roomID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ChatMessage{}, core.ErrRoomNotFound
		}
		return domain.ChatMessage{}, fmt.Errorf("load group: %w", err)
	}

	model := messageModel{
		ID:        uuid.NewString(),
		GroupID:   group.ID,
		AuthorID:  string(authorID),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Omit("Author").Create(&model).Error; err != nil {
		return domain.ChatMessage{}, fmt.Errorf("insert message: %w", err)
	}
	if err := db.Preload("Author").First(&model, "id = ?", model.ID).Error; err != nil {
		return domain.ChatMessage{}, fmt.Errorf("reload message: %w", err)
	}
	return toMessage(model), nil
}

func (s *Store) RoomMembers(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&memberModel{}).
		Where("group_id = ?", string(roomID)).
		Order("joined_at, user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("room members: %w", err)
	}
	out := make([]domain.UserID, len(ids))
	for i, id := range ids {
		out[i] = domain.UserID(id)
	}
	return out, nil
}

func (s *Store) RoomName(ctx context.Context, roomID domain.RoomID) (string, error) {
	var group groupModel
	if err := s.db.WithContext(ctx).First(&group, "id = ?", string(roomID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", core.ErrRoomNotFound
		}
		return "", fmt.Errorf("load group: %w", err)
	}
	return group.Name, nil
}

func toMessage(m messageModel) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        m.ID,
		RoomID:    domain.RoomID(m.GroupID),
		AuthorID:  domain.UserID(m.AuthorID),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Author: domain.Author{
			ID:        domain.UserID(m.Author.ID),
			FirstName: m.Author.FirstName,
			LastName:  m.Author.LastName,
			Email:     m.Author.Email,
			AvatarURL: m.Author.AvatarURL,
		},
	}
}
