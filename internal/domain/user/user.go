package user

import (
	"context"

	"snapfind/internal/common"
)

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleHiringManager Role = "hiring_manager"
	RoleRecruiter     Role = "recruiter"
)

type Repository interface {
	ListIDsByCompanyRoles(ctx context.Context, companyID common.UUID, roles []Role) ([]common.UUID, error)
}
