package persist

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one persisted key/value row.
type Record struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte    `gorm:"type:mediumblob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Record) TableName() string { return "kv_records" }

// GormKV is a MySQL-backed Adapter for deployments where redis is not
// available but durability across restarts still matters.
type GormKV struct {
	db *gorm.DB
}

var _ Adapter = (*GormKV)(nil)

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

// OpenMySQL connects with the given DSN and migrates the kv table.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return db, nil
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var rec Record
	err := g.db.WithContext(ctx).First(&rec, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

func (g *GormKV) Set(ctx context.Context, key string, value []byte) error {
	rec := Record{Key: key, Value: value}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

func (g *GormKV) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&Record{}, "`key` = ?", key).Error
}
