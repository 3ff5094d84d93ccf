package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/awards/internal/domain"
)

// The catalog repositories persist the entities the voting engine consumes:
// events, categories, nominees and voters. The engine never writes them;
// Create/BulkCreate exist for provisioning and fixtures.

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e domain.Event) error {
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("gorm events: insert: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id domain.EventID) (domain.Event, error) {
	var e domain.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("gorm events: find: %w", err)
	}
	return e, nil
}

func (r *EventRepository) ListOpen(ctx context.Context, now time.Time) ([]domain.Event, error) {
	var events []domain.Event
	if err := r.db.WithContext(ctx).
		Where("start_at <= ? AND (end_at IS NULL OR end_at >= ?)", now, now).
		Order("start_at ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("gorm events: list open: %w", err)
	}
	return events, nil
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c domain.Category) error {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return fmt.Errorf("gorm categories: insert: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id domain.CategoryID) (domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, fmt.Errorf("gorm categories: find: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByEvent(ctx context.Context, eventID domain.EventID) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("gorm categories: list by event: %w", err)
	}
	return categories, nil
}

type NomineeRepository struct {
	db *gorm.DB
}

func NewNomineeRepository(db *gorm.DB) *NomineeRepository {
	return &NomineeRepository{db: db}
}

func (r *NomineeRepository) BulkCreate(ctx context.Context, categoryID domain.CategoryID, nominees []domain.Nominee) error {
	if len(nominees) == 0 {
		return nil
	}
	for i := range nominees {
		nominees[i].CategoryID = categoryID
	}
	if err := r.db.WithContext(ctx).Create(&nominees).Error; err != nil {
		return fmt.Errorf("gorm nominees: bulk insert: %w", err)
	}
	return nil
}

func (r *NomineeRepository) FindByID(ctx context.Context, id domain.NomineeID) (domain.Nominee, error) {
	var n domain.Nominee
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Nominee{}, domain.ErrNotFound
		}
		return domain.Nominee{}, fmt.Errorf("gorm nominees: find: %w", err)
	}
	return n, nil
}

func (r *NomineeRepository) ListByCategory(ctx context.Context, categoryID domain.CategoryID) ([]domain.Nominee, error) {
	var nominees []domain.Nominee
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&nominees).Error; err != nil {
		return nil, fmt.Errorf("gorm nominees: list by category: %w", err)
	}
	return nominees, nil
}

type VoterRepository struct {
	db *gorm.DB
}

func NewVoterRepository(db *gorm.DB) *VoterRepository {
	return &VoterRepository{db: db}
}

func (r *VoterRepository) Create(ctx context.Context, v domain.Voter) error {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return fmt.Errorf("gorm voters: insert: %w", err)
	}
	return nil
}

func (r *VoterRepository) FindByID(ctx context.Context, id domain.VoterID) (domain.Voter, error) {
	var v domain.Voter
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Voter{}, domain.ErrNotFound
		}
		return domain.Voter{}, fmt.Errorf("gorm voters: find: %w", err)
	}
	return v, nil
}

var (
	_ domain.EventRepository    = (*EventRepository)(nil)
	_ domain.CategoryRepository = (*CategoryRepository)(nil)
	_ domain.NomineeRepository  = (*NomineeRepository)(nil)
	_ domain.VoterRepository    = (*VoterRepository)(nil)
)
