package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/database"
	"github.com/amire/crewboard/internal/ports"
)

const memberColumns = `id, name, role, color, phone, email, availability, created_at, updated_at`

// MemberRepositoryImpl implements the MemberRepository interface
type MemberRepositoryImpl struct {
	db *database.DB
}

// NewMemberRepository creates a new team member repository
func NewMemberRepository(db *database.DB) ports.MemberRepository {
	return &MemberRepositoryImpl{db: db}
}

func (r *MemberRepositoryImpl) Create(ctx context.Context, member *entities.Member) error {
	query := `
		INSERT INTO team_members (name, role, color, phone, email, availability)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		member.Name, member.Role, member.Color, member.Phone, member.Email,
		toStringArray(member.Availability),
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create team member: %w", err)
	}

	return nil
}

func (r *MemberRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE id = $1`

	var row memberRow
	if err := r.db.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrMemberNotFound
		}
		return nil, fmt.Errorf("get team member by id: %w", err)
	}

	return row.toEntity(), nil
}

func (r *MemberRepositoryImpl) Update(ctx context.Context, member *entities.Member) error {
	query := `
		UPDATE team_members
		SET name = $2, role = $3, color = $4, phone = $5, email = $6,
			availability = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		member.ID, member.Name, member.Role, member.Color, member.Phone, member.Email,
		toStringArray(member.Availability),
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrMemberNotFound
		}
		return fmt.Errorf("update team member: %w", err)
	}

	return nil
}

// Delete removes the member and strips its id from every job in one
// transaction. It returns the ids of the jobs that were changed.
func (r *MemberRepositoryImpl) Delete(ctx context.Context, id int64) ([]int64, error) {
	var detached []int64

	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete team member: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return entities.ErrMemberNotFound
		}

		query := `
			UPDATE jobs
			SET assigned_team = array_remove(assigned_team, $1), updated_at = CURRENT_TIMESTAMP
			WHERE $1 = ANY(assigned_team)
			RETURNING id`
		if err := tx.SelectContext(ctx, &detached, query, id); err != nil {
			return fmt.Errorf("detach team member from jobs: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return detached, nil
}

func (r *MemberRepositoryImpl) List(ctx context.Context) ([]*entities.Member, error) {
	return r.selectMembers(ctx, `SELECT `+memberColumns+` FROM team_members ORDER BY id`)
}

func (r *MemberRepositoryImpl) AvailableOn(ctx context.Context, day entities.DateKey) ([]*entities.Member, error) {
	return r.selectMembers(ctx, `SELECT `+memberColumns+` FROM team_members WHERE $1 = ANY(availability) ORDER BY id`, string(day))
}

func (r *MemberRepositoryImpl) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int64
	query := `SELECT id FROM team_members WHERE id = ANY($1) ORDER BY id`
	if err := r.db.DB.SelectContext(ctx, &found, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("look up team member ids: %w", err)
	}

	return found, nil
}

func (r *MemberRepositoryImpl) selectMembers(ctx context.Context, query string, args ...interface{}) ([]*entities.Member, error) {
	var rows []memberRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	members := make([]*entities.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toEntity())
	}
	return members, nil
}
