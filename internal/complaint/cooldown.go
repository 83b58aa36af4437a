package complaint

import (
	"context"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/config"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/storage"
)

const (
	rewardAmount = config.ValidComplaintReward
	rewardReason = config.ValidComplaintRewardReason
)

// checkCooldown fails with a *apperr.CooldownError when the student's latest
// complaint in category is younger than the cooldown period. Other
// categories do not count.
func (s *Service) checkCooldown(ctx context.Context, st storage.Storage, studentID uint, category models.Category, now time.Time) error {
	last, err := st.LatestComplaintInCategory(ctx, studentID, category)
	if err != nil || last == nil {
		return err
	}
	availableAt := last.CreatedAt.Add(config.CooldownPeriod)
	if now.Before(availableAt) {
		return &apperr.CooldownError{
			Category:    category,
			AvailableAt: availableAt,
			Remaining:   availableAt.Sub(now),
		}
	}
	return nil
}

// DaysRemaining is the number of whole days, rounded up, until a cooldown
// started at last ends. It is zero when last is nil or the cooldown is over.
func DaysRemaining(last *time.Time, now time.Time) int {
	if last == nil {
		return 0
	}
	return ceilDays(last.Add(config.CooldownPeriod).Sub(now))
}

func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	return int((d + day - 1) / day)
}
