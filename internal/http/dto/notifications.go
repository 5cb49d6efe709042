package dto

import "notistore/internal/model"

type CreateNotificationRequest struct {
	Room  string `json:"room"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ListNotificationsResponse struct {
	Room          string               `json:"room"`
	Notifications []model.Notification `json:"notifications"`
	// NextBefore is the cursor for the next page; zero when there is none.
	NextBefore int64 `json:"next_before,omitempty"`
}

type UnreadCountResponse struct {
	Room   string `json:"room"`
	Unread int64  `json:"unread"`
}

type MarkAllReadResponse struct {
	Room    string `json:"room"`
	Updated int64  `json:"updated"`
}
