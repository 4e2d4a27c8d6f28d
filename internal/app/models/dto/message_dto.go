package dto

import "github.com/yigit/clubhub/internal/app/models"

// SendMessageRequest is the body of POST /messages/:participantId
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,notblank,max=4000"`
}

// MessageResponse is the API shape of a message
type MessageResponse struct {
	ID            int64  `json:"id"`
	ParticipantID int64  `json:"participantId"`
	SenderID      int64  `json:"senderId"`
	Content       string `json:"content"`
	SentAt        string `json:"sentAt"`
}

// FromMessage converts a message to its response
func FromMessage(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		ParticipantID: m.ParticipantID,
		SenderID:      m.SenderID,
		Content:       m.Content,
		SentAt:        formatTime(m.SentAt),
	}
}

// FromMessages converts a thread
func FromMessages(ms []*models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMessage(m))
	}
	return out
}

// ThreadSummaryResponse describes a thread in the SU inbox
type ThreadSummaryResponse struct {
	ParticipantID int64  `json:"participantId"`
	MessageCount  int64  `json:"messageCount"`
	LastMessageAt string `json:"lastMessageAt"`
}

// FromThreadSummaries converts thread summaries
func FromThreadSummaries(ts []*models.ThreadSummary) []ThreadSummaryResponse {
	out := make([]ThreadSummaryResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, ThreadSummaryResponse{
			ParticipantID: t.ParticipantID,
			MessageCount:  t.MessageCount,
			LastMessageAt: formatTime(t.LastMessageAt),
		})
	}
	return out
}
