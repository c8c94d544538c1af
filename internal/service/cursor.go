package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

// ErrInvalidCursor rejects a cursor this service did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

type cursorToken struct {
	Rank     int       `json:"r"`
	QueuedAt time.Time `json:"t"`
	Seq      int64     `json:"s"`
}

// EncodeCursor returns the opaque keyset position just after entry.
func EncodeCursor(entry *domain.QueueEntry) string {
	body, _ := json.Marshal(cursorToken{Rank: entry.Priority.Rank(), QueuedAt: entry.QueuedAt.UTC(), Seq: entry.Seq})
	return base64.RawURLEncoding.EncodeToString(body)
}

// DecodeCursor parses a cursor from EncodeCursor.
func DecodeCursor(raw string) (*repository.QueueCursor, error) {
	body, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var tok cursorToken
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, ErrInvalidCursor
	}
	if tok.Rank < 0 || tok.Rank >= len(domain.Priorities) || tok.Seq <= 0 {
		return nil, ErrInvalidCursor
	}
	return &repository.QueueCursor{PriorityRank: tok.Rank, QueuedAt: tok.QueuedAt, Seq: tok.Seq}, nil
}
