package model

// swagger:model LeaderboardEntry
type LeaderboardEntry struct {
	StudentID   int    `json:"student_id" validate:"required"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank" validate:"min=1"`
}

// swagger:model Leaderboard
type Leaderboard struct {
	Entries           []LeaderboardEntry `json:"leaderboard" validate:"dive"`
	CurrentUserRank   *int               `json:"current_user_rank"`
	CurrentUserPoints *int               `json:"current_user_points"`
}

// Points returns the viewer's total, zero when the viewer is not ranked.
func (l Leaderboard) Points() int {
	if l.CurrentUserPoints == nil {
		return 0
	}
	return *l.CurrentUserPoints
}
