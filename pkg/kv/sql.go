package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvRow maps the kv_store table created by the goose migrations.
type kvRow struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (kvRow) TableName() string { return "kv_store" }

// SQLStore persists values in the kv_store table through gorm (postgres or sqlite).
type SQLStore struct {
	client *db.Client
	now    func() time.Time
}

func NewSQLStore(client *db.Client) *SQLStore {
	return &SQLStore{client: client, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row kvRow
	err := s.client.DB().WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(row.Value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	row := kvRow{Key: key, Value: string(value), UpdatedAt: s.now().UTC()}
	return s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *SQLStore) Del(ctx context.Context, key string) error {
	return s.client.DB().WithContext(ctx).Where("key = ?", key).Delete(&kvRow{}).Error
}

func (s *SQLStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	var rows []kvRow
	err := s.client.DB().WithContext(ctx).
		Where(`key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("key").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		// sqlite LIKE ignores ASCII case
		if !strings.HasPrefix(r.Key, prefix) {
			continue
		}
		out = append(out, Entry{Key: r.Key, Value: []byte(r.Value)})
	}
	return out, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *SQLStore) Close() error {
	return s.client.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
