package models

import "time"

// File is the metadata of an object uploaded to the storage bucket.
type File struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	StorageKey  string    `json:"-"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
