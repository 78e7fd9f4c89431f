package store

import (
	"blooddonor/internal/utils"
	"blooddonor/pkg/types"
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donorTableName = "blooddonor.donors"

var donorColumns = utils.StructTagValues(types.Donor{})

type DonorRepository struct {
	pool *pgxpool.Pool
}

func NewDonorRepository(pool *pgxpool.Pool) *DonorRepository {
	return &DonorRepository{pool: pool}
}

// CreateDonor appends a donor and assigns its ID. Emails are not checked for duplicates.
func (r *DonorRepository) CreateDonor(ctx context.Context, donor *types.Donor) error {
	if donor.ID == "" {
		donor.ID = utils.NanoID()
	}

	query, args, err := createDonorQuery(donor, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate create donor query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create donor: %w", err)
	}

	return nil
}

// Donors returns the whole collection in registration order.
func (r *DonorRepository) Donors(ctx context.Context) ([]*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donors query: %w", err)
	}

	donors := make([]*types.Donor, 0)
	err = pgxscan.Select(ctx, r.pool, &donors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donors: %w", err)
	}

	return donors, nil
}

// Donor fetches one donor. Malformed IDs are reported as not found without a
// round trip.
func (r *DonorRepository) Donor(ctx context.Context, donorID string) (*types.Donor, error) {
	if !utils.IsNanoID(donorID) {
		return nil, types.ErrDonorNotFound
	}

	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"id": donorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor query: %w", err)
	}

	var donor types.Donor
	err = pgxscan.Get(ctx, r.pool, &donor, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to fetch donor: %w", err)
	}

	return &donor, nil
}

// UpdateDonor writes only the columns set in changes. An unknown ID is
// reported as types.ErrDonorNotFound, nothing is created.
func (r *DonorRepository) UpdateDonor(ctx context.Context, donorID string, changes types.DonorChanges) error {
	if changes.IsEmpty() {
		_, err := r.Donor(ctx, donorID)
		return err
	}

	query, args, err := updateDonorQuery(donorID, changes, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate update donor query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrDonorNotFound
	}

	return nil
}

func createDonorQuery(donor *types.Donor, now time.Time) (string, []any, error) {
	donor.CreatedAt = now
	donor.UpdatedAt = now

	return psql().
		Insert(donorTableName).
		SetMap(utils.StructToMap(donor)).
		ToSql()
}

func updateDonorQuery(donorID string, changes types.DonorChanges, now time.Time) (string, []any, error) {
	columns := changes.Columns()
	columns["updated_at"] = now

	return psql().
		Update(donorTableName).
		SetMap(columns).
		Where(sq.Eq{"id": donorID}).
		ToSql()
}
