package client

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	User      User   `json:"user"`
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

type UploadRequest struct {
	DroneID    string           `json:"drone_id"`
	Date       string           `json:"date"`
	Location   string           `json:"location"`
	Violations []ViolationInput `json:"violations"`
}

type ViolationInput struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ImageURL  string  `json:"image_url"`
}

type UploadSummary struct {
	ID              string `json:"id"`
	Filename        string `json:"filename"`
	ViolationsCount int    `json:"violationsCount"`
	Status          string `json:"status"`
}

type UploadCreated struct {
	Message string        `json:"message"`
	Upload  UploadSummary `json:"upload"`
}

type Upload struct {
	ID              string     `json:"id"`
	Filename        string     `json:"filename"`
	DroneID         string     `json:"droneId"`
	Date            string     `json:"date"`
	Location        string     `json:"location"`
	UserID          string     `json:"userId"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt"`
	ViolationsCount int64      `json:"violationsCount"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

type UploadList struct {
	Uploads    []Upload   `json:"uploads"`
	Pagination Pagination `json:"pagination"`
}

type UploadRef struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
}

type Violation struct {
	ID            string     `json:"id"`
	ViolationID   string     `json:"violationId"`
	DroneID       string     `json:"droneId"`
	ViolationType string     `json:"violationType"`
	Timestamp     string     `json:"timestamp"`
	Date          string     `json:"date"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	ImageURL      string     `json:"imageUrl"`
	Location      string     `json:"location"`
	UploadID      string     `json:"uploadId"`
	CreatedAt     time.Time  `json:"createdAt"`
	Upload        *UploadRef `json:"upload,omitempty"`
}

type ViolationList struct {
	Violations []Violation `json:"violations"`
	Pagination Pagination  `json:"pagination"`
}

// ViolationQuery filters ListViolations. Zero fields are left out of the query.
type ViolationQuery struct {
	DroneID string
	Date    string
	Type    string
	Limit   int
	Offset  int
}

type Stats struct {
	TotalViolations  int64 `json:"totalViolations"`
	ViolationsByType []struct {
		Type  string `json:"type"`
		Count int64  `json:"count"`
	} `json:"violationsByType"`
	ViolationsByDrone []struct {
		DroneID string `json:"droneId"`
		Count   int64  `json:"count"`
	} `json:"violationsByDrone"`
	ViolationsByDate []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	} `json:"violationsByDate"`
}

type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
