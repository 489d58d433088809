package notification

import (
	"context"
	"time"

	"snapfind/internal/common"
)

type Type string

const (
	TypeSLABreach      Type = "sla_breach"
	TypeReviewRequired Type = "review_required"
	TypeAutoAdvance    Type = "auto_advance"
)

type Notification struct {
	ID        common.UUID `json:"id"`
	UserID    common.UUID `json:"user_id"`
	Type      Type        `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	EntityRef string      `json:"entity_ref,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Notifier is the external collaborator boundary; delivery beyond the store
// is someone else's problem.
type Notifier interface {
	CreateNotification(ctx context.Context, userID common.UUID, ntype Type, title, message, entityRef string) error
}
