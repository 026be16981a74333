// Package models defines the persistence-layer records shared by the server
// repositories and services.
package models

import "time"

// Room is one durable row per collaboration session. The server never holds
// the room key: iv and ciphertext are opaque and a save replaces all three
// payload fields together, never partially.
type Room struct {
	ID           string
	SceneVersion int64
	IV           []byte
	Ciphertext   []byte
	UpdatedAt    time.Time
}
