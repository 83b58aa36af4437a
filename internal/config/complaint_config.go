package config

import "time"

const (
	// Submission
	CooldownPeriod = 5 * 24 * time.Hour

	// Credits
	InitialCredits             = 20
	ValidComplaintReward       = 5
	ValidComplaintRewardReason = "Valid Complaint Reward"
)
