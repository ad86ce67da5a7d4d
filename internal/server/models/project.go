package models

import "time"

type Project struct {
	ID        string
	Name      string
	UserID    string
	CreatedAt time.Time
}
