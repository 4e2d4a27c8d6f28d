package models

import "time"

// Message is one entry in an SU thread. A thread is keyed by its participant.
type Message struct {
	ID            int64     `json:"id" db:"id"`
	ParticipantID int64     `json:"participantId" db:"participant_id"`
	SenderID      int64     `json:"senderId" db:"sender_id"`
	Content       string    `json:"content" db:"content"`
	SentAt        time.Time `json:"sentAt" db:"sent_at"`
}

// ThreadSummary describes a thread for the SU inbox
type ThreadSummary struct {
	ParticipantID int64     `json:"participantId"`
	MessageCount  int64     `json:"messageCount"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
