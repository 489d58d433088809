package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"snapfind/internal/common"
	"snapfind/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ListIDsByCompanyRoles(ctx context.Context, companyID common.UUID, roles []user.Role) ([]common.UUID, error) {
	roleValues := make([]string, 0, len(roles))
	for _, role := range roles {
		roleValues = append(roleValues, string(role))
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE company_id = $1 AND role = ANY($2)`, companyID, pq.Array(roleValues))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users by role", err)
	}
	defer rows.Close()
	var ids []common.UUID
	for rows.Next() {
		var id common.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan user id", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
