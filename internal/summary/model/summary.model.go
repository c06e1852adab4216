package model

import "time"

type Summary struct {
	ID        string    `json:"id"`
	NoteID    string    `json:"note_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Note is set only by queries that join the parent note.
	Note *NoteRef `json:"note,omitempty"`
}

type NoteRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type GenerateRequest struct {
	NoteID string `json:"note_id"`
}
