package model

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
	Attempts    int    `json:"attempts"`
}
