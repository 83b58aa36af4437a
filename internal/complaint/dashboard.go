package complaint

import (
	"context"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/config"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/policy"
	"campusvoice/backend/internal/storage"
)

// NotificationCount counts the OPEN complaints a reviewer is responsible
// for. The second result is false for viewers who get no count at all.
// It is computed from the store on every call.
func (s *Service) NotificationCount(ctx context.Context, actor models.Actor) (int64, bool, error) {
	if !policy.CanPerform(actor.Role, policy.ViewNotifications) {
		return 0, false, nil
	}
	filter := storage.CountFilter{Status: models.StatusOpen}
	if actor.Role != models.RoleAdmin && actor.Department != "" {
		dept := actor.Department
		filter.Department = &dept
	}
	n, err := s.Storage.CountComplaints(ctx, filter)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// CategoryOption is one entry of the category selection page.
type CategoryOption struct {
	Category      models.Category `json:"category"`
	Label         string          `json:"label"`
	DaysRemaining int             `json:"days_remaining"`
	Available     bool            `json:"available"`
}

// Categories lists every category. For students each entry carries the
// days left on that category's cooldown.
func (s *Service) Categories(ctx context.Context, actor models.Actor) ([]CategoryOption, error) {
	student := policy.CanPerform(actor.Role, policy.SubmitComplaint)
	now := s.now()
	out := make([]CategoryOption, 0, len(models.Categories))
	for _, c := range models.Categories {
		opt := CategoryOption{Category: c, Label: c.Label()}
		if student {
			last, err := s.Storage.LatestComplaintInCategory(ctx, actor.UserID, c)
			if err != nil {
				return nil, err
			}
			if last != nil {
				opt.DaysRemaining = DaysRemaining(&last.CreatedAt, now)
			}
			opt.Available = opt.DaysRemaining == 0
		}
		out = append(out, opt)
	}
	return out, nil
}

type Dashboard struct {
	Role              models.Role             `json:"role"`
	FullName          string                  `json:"full_name"`
	Department        string                  `json:"department,omitempty"`
	Credits           *int                    `json:"credits,omitempty"`
	LastComplaintAt   *time.Time              `json:"last_complaint_at,omitempty"`
	DaysRemaining     *int                    `json:"days_remaining,omitempty"`
	Categories        []CategoryOption        `json:"categories,omitempty"`
	StatusCounts      map[models.Status]int64 `json:"status_counts"`
	NotificationCount *int64                  `json:"notifications_count,omitempty"`
}

func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (*Dashboard, error) {
	user, err := s.Storage.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		Role:         user.Role,
		FullName:     user.FullName(),
		Department:   user.Department,
		StatusCounts: make(map[models.Status]int64, len(models.Statuses)),
	}

	var owner *uint
	if actor.Role == models.RoleStudent {
		credits := user.Credits
		days := DaysRemaining(user.LastComplaintAt, s.now())
		d.Credits = &credits
		d.LastComplaintAt = user.LastComplaintAt
		d.DaysRemaining = &days
		if d.Categories, err = s.Categories(ctx, actor); err != nil {
			return nil, err
		}
		id := actor.UserID
		owner = &id
	}

	for _, st := range models.Statuses {
		n, err := s.Storage.CountComplaints(ctx, storage.CountFilter{StudentID: owner, Status: st})
		if err != nil {
			return nil, err
		}
		d.StatusCounts[st] = n
	}

	if n, ok, err := s.NotificationCount(ctx, actor); err != nil {
		return nil, err
	} else if ok {
		d.NotificationCount = &n
	}
	return d, nil
}

// Ledger is a user's credit balance with its transactions, newest first.
type Ledger struct {
	Balance        int                        `json:"balance"`
	InitialCredits int                        `json:"initial_credits"`
	Transactions   []models.CreditTransaction `json:"transactions"`
}

func (s *Service) Credits(ctx context.Context, actor models.Actor) (*Ledger, error) {
	if actor.UserID == 0 {
		return nil, apperr.Unauthorized("viewCredits")
	}
	user, err := s.Storage.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	txns, err := s.Storage.ListCreditTransactions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []models.CreditTransaction{}
	}
	return &Ledger{Balance: user.Credits, InitialCredits: config.InitialCredits, Transactions: txns}, nil
}
