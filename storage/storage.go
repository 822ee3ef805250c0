package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/steemkit/steembridge/pkg/steem"
)

const (
	defaultDBPath = "steembridge.db"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Storage keeps the capability sets discovered on each endpoint.
type Storage struct {
	db *gorm.DB
}

func NewStorage(path string) (*Storage, error) {
	if path == "" {
		path = defaultDBPath
	}

	dsn := fmt.Sprintf("file:%s?cache=shared", path)

	dial := sqlite.Open(dsn)
	dbConf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(dial, dbConf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	if err := db.AutoMigrate(&SnapshotDTO{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type SnapshotDTO struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Endpoint string    `gorm:"column:endpoint;not null;index"`
	APIs     string    `gorm:"column:apis;not null"`
	Count    int       `gorm:"column:count;not null"`
	TakenAt  time.Time `gorm:"column:taken_at;not null"`
}

func (SnapshotDTO) TableName() string {
	return "capability_snapshots"
}

// Capabilities decodes the stored sub-API ids.
func (dto SnapshotDTO) Capabilities() (steem.CapabilitySet, error) {
	var caps steem.CapabilitySet
	if err := json.Unmarshal([]byte(dto.APIs), &caps); err != nil {
		return steem.CapabilitySet{}, fmt.Errorf("failed to decode snapshot %d: %w", dto.ID, err)
	}
	return caps, nil
}

func (s *Storage) SaveSnapshot(endpoint string, caps steem.CapabilitySet) (*SnapshotDTO, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	apis, err := json.Marshal(caps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode capabilities: %w", err)
	}

	dto := SnapshotDTO{
		Endpoint: endpoint,
		APIs:     string(apis),
		Count:    caps.Len(),
		TakenAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&dto).Error; err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return &dto, nil
}

// GetSnapshots returns the snapshots of endpoint, newest first. An empty
// endpoint returns the snapshots of every endpoint.
func (s *Storage) GetSnapshots(endpoint string, limit int) ([]SnapshotDTO, error) {
	query := s.db.Order("taken_at DESC, id DESC")
	if endpoint != "" {
		query = query.Where("endpoint = ?", endpoint)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var snapshots []SnapshotDTO
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve snapshots: %w", err)
	}
	return snapshots, nil
}

func (s *Storage) GetLatestSnapshot(endpoint string) (*SnapshotDTO, error) {
	var dto SnapshotDTO
	err := s.db.Where("endpoint = ?", endpoint).Order("taken_at DESC, id DESC").First(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w for endpoint %s", ErrSnapshotNotFound, endpoint)
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve snapshot: %w", err)
	}
	return &dto, nil
}

// DeleteSnapshots removes every snapshot of endpoint and returns how many
// were removed.
func (s *Storage) DeleteSnapshots(endpoint string) (int64, error) {
	res := s.db.Where("endpoint = ?", endpoint).Delete(&SnapshotDTO{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", res.Error)
	}
	return res.RowsAffected, nil
}
