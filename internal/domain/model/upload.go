package model

import "time"

// Upload is the metadata record written once per PDF rendered into outline
// images. It is not linked to the files on disk.
type Upload struct {
	ID        string    `json:"id"`
	Uploader  string    `json:"uploader"`
	Category  string    `json:"category"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalUsers       int            `json:"total_users"`
	TotalUploads     int            `json:"total_uploads"`
	TotalAttempts    int            `json:"total_attempts"`
	LevelsByCategory map[string]int `json:"levels_by_category"`
}
