package model

import (
	"time"
	"unicode/utf8"
)

// MessageKind distinguishes sends from replies
type MessageKind string

const (
	MessageKindSend  MessageKind = "send"
	MessageKindReply MessageKind = "reply"
)

// DefaultMaxMessageLength is the longest text accepted by Send and Reply.
const DefaultMaxMessageLength = 40

// Message represents a message exchanged between processes
type Message struct {
	ID     string      `json:"id"`
	Kind   MessageKind `json:"kind"`
	Sender int         `json:"sender"`
	Target int         `json:"target"`
	Text   string      `json:"text"`
	SentAt time.Time   `json:"sentAt"`
}

// ValidateText checks message text against the length bound.
func ValidateText(text string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	size := utf8.RuneCountInString(text)
	switch {
	case size == 0:
		return ErrEmptyMessage
	case size > maxLength:
		return ErrMessageTooLong
	}
	return nil
}
