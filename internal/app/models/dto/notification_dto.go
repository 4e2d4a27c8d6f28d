package dto

import "github.com/yigit/clubhub/internal/app/models"

// BroadcastRequest is the body of POST /notifications/all
type BroadcastRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=255"`
	Content string `json:"content" binding:"required,notblank"`
}

// ClubNotificationRequest is the body of POST /notifications/club
type ClubNotificationRequest struct {
	ClubID  int64  `json:"clubId" binding:"required,min=1"`
	Title   string `json:"title" binding:"required,notblank,max=255"`
	Content string `json:"content" binding:"required,notblank"`
}

// ExplicitNotificationRequest is the body of POST /notifications
type ExplicitNotificationRequest struct {
	UserIDs []int64 `json:"userIds" binding:"required,min=1,dive,min=1"`
	Title   string  `json:"title" binding:"required,notblank,max=255"`
	Content string  `json:"content" binding:"required,notblank"`
}

// NotificationResponse is the API shape of a notification
type NotificationResponse struct {
	ID             int64  `json:"id"`
	SenderID       *int64 `json:"senderId,omitempty"`
	ClubID         *int64 `json:"clubId,omitempty"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	PostedAt       string `json:"postedAt"`
	RecipientCount int64  `json:"recipientCount,omitempty"`
	IsRead         *bool  `json:"isRead,omitempty"`
}

// FromNotification converts a notification to its response
func FromNotification(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		SenderID:       n.SenderID,
		ClubID:         n.ClubID,
		Title:          n.Title,
		Content:        n.Content,
		PostedAt:       formatTime(n.PostedAt),
		RecipientCount: n.RecipientCount,
	}
}

// FromInbox converts inbox items
func FromInbox(items []*models.InboxItem) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, it := range items {
		resp := FromNotification(&it.Notification)
		read := it.IsRead
		resp.IsRead = &read
		out = append(out, resp)
	}
	return out
}
