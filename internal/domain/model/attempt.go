package model

import "time"

// Attempt is one recorded gameplay event. Attempts are append-only; ID follows
// insertion order.
type Attempt struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Category  string    `json:"category"`
	Level     int       `json:"level"`
	Attempt   int       `json:"attempt"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

type CategoryStats struct {
	Attempts     int `json:"attempts"`
	Points       int `json:"points"`
	LevelsPlayed int `json:"levels_played"`
}

type UserStats struct {
	Username      string                   `json:"username"`
	TotalAttempts int                      `json:"total_attempts"`
	TotalPoints   int                      `json:"total_points"`
	LevelsPlayed  int                      `json:"levels_played"`
	CategoryStats map[string]CategoryStats `json:"category_stats"`
}
