package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/awards/internal/domain"
)

// BallotRepository is the persisted vote ledger. The unique index on
// (voter_id, category_id) declared on the model is the only guard for the
// one-ballot-per-voter-per-category invariant; Insert surfaces a violation
// as domain.ErrDuplicateBallot for the engine to absorb.
type BallotRepository struct {
	db *gorm.DB
}

func NewBallotRepository(db *gorm.DB) *BallotRepository {
	return &BallotRepository{db: db}
}

func (r *BallotRepository) Insert(ctx context.Context, b domain.Ballot) error {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateBallot
		}
		return fmt.Errorf("gorm ballots: insert: %w", err)
	}
	return nil
}

func (r *BallotRepository) ReplaceNominee(ctx context.Context, id domain.BallotID, nomineeID domain.NomineeID, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Ballot{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"nominee_id": nomineeID,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm ballots: replace nominee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BallotRepository) FindByVoterAndCategory(ctx context.Context, voterID domain.VoterID, categoryID domain.CategoryID) (domain.Ballot, error) {
	var b domain.Ballot
	if err := r.db.WithContext(ctx).
		First(&b, "voter_id = ? AND category_id = ?", voterID, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Ballot{}, domain.ErrNotFound
		}
		return domain.Ballot{}, fmt.Errorf("gorm ballots: find by voter and category: %w", err)
	}
	return b, nil
}

func (r *BallotRepository) DeleteByVoterAndCategory(ctx context.Context, voterID domain.VoterID, categoryID domain.CategoryID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("voter_id = ? AND category_id = ?", voterID, categoryID).
		Delete(&domain.Ballot{})
	if res.Error != nil {
		return false, fmt.Errorf("gorm ballots: delete: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *BallotRepository) ListByVoter(ctx context.Context, voterID domain.VoterID) ([]domain.Ballot, error) {
	var ballots []domain.Ballot
	if err := r.db.WithContext(ctx).
		Where("voter_id = ?", voterID).
		Order("created_at ASC").
		Find(&ballots).Error; err != nil {
		return nil, fmt.Errorf("gorm ballots: list by voter: %w", err)
	}
	return ballots, nil
}

func (r *BallotRepository) CountByNominee(ctx context.Context, categoryID domain.CategoryID) (map[domain.NomineeID]int64, error) {
	type row struct {
		NomineeID string
		Total     int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Ballot{}).
		Select("nominee_id as nominee_id, COUNT(*) as total").
		Where("category_id = ?", categoryID).
		Group("nominee_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm ballots: count by nominee: %w", err)
	}

	counts := make(map[domain.NomineeID]int64, len(rows))
	for _, item := range rows {
		counts[domain.NomineeID(item.NomineeID)] = item.Total
	}
	return counts, nil
}

func (r *BallotRepository) CountByCategory(ctx context.Context, categoryID domain.CategoryID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Ballot{}).
		Where("category_id = ?", categoryID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm ballots: count by category: %w", err)
	}
	return total, nil
}

func (r *BallotRepository) TopNominees(ctx context.Context, eventID domain.EventID, limit int) ([]domain.NomineeCount, error) {
	type row struct {
		NomineeID  string
		CategoryID string
		Name       string
		Total      int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT b.nominee_id AS nominee_id, b.category_id AS category_id, n.name AS name, COUNT(*) AS total
            FROM ballots b
            JOIN nominees n ON n.id = b.nominee_id
            WHERE b.event_id = ?
            GROUP BY b.nominee_id, b.category_id, n.name
            ORDER BY total DESC, b.nominee_id ASC
            LIMIT ?
        `, eventID, limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm ballots: top nominees: %w", err)
	}

	top := make([]domain.NomineeCount, len(rows))
	for i, item := range rows {
		top[i] = domain.NomineeCount{
			NomineeID:  domain.NomineeID(item.NomineeID),
			CategoryID: domain.CategoryID(item.CategoryID),
			Name:       item.Name,
			Votes:      item.Total,
		}
	}
	return top, nil
}

// CountByDay buckets ballot creations by calendar day in loc. Bucketing
// happens app-side so the configured timezone applies uniformly across
// Postgres and the SQLite used in tests.
func (r *BallotRepository) CountByDay(ctx context.Context, eventID domain.EventID, loc *time.Location) ([]domain.DailyCount, error) {
	if loc == nil {
		loc = time.Local
	}

	var createdAts []time.Time
	if err := r.db.WithContext(ctx).
		Model(&domain.Ballot{}).
		Where("event_id = ?", eventID).
		Pluck("created_at", &createdAts).Error; err != nil {
		return nil, fmt.Errorf("gorm ballots: count by day: %w", err)
	}

	perDay := make(map[time.Time]int64)
	for _, ts := range createdAts {
		local := ts.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		perDay[day]++
	}

	days := make([]domain.DailyCount, 0, len(perDay))
	for day, total := range perDay {
		days = append(days, domain.DailyCount{Day: day, Total: total})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

func (r *BallotRepository) GroupByEventCategory(ctx context.Context) (map[domain.EventID]map[domain.CategoryID]int64, error) {
	type row struct {
		EventID    string
		CategoryID string
		Total      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Ballot{}).
		Select("event_id as event_id, category_id as category_id, COUNT(*) as total").
		Group("event_id").
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm ballots: group by event and category: %w", err)
	}

	grouped := make(map[domain.EventID]map[domain.CategoryID]int64)
	for _, item := range rows {
		eventID := domain.EventID(item.EventID)
		if grouped[eventID] == nil {
			grouped[eventID] = make(map[domain.CategoryID]int64)
		}
		grouped[eventID][domain.CategoryID(item.CategoryID)] = item.Total
	}
	return grouped, nil
}

var _ domain.BallotRepository = (*BallotRepository)(nil)
