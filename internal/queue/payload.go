package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	"notistore/internal/model"
)

// ErrInvalidPayload marks messages that can never be processed and should
// not be redelivered.
var ErrInvalidPayload = errors.New("invalid notification payload")

// Payload is the broker wire format of a notification.
type Payload struct {
	Room  string `json:"room"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func EncodeNotification(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodeNotification parses a message body. Type validity is left to the
// service so it is checked in one place.
func DecodeNotification(body []byte) (model.Notification, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Notification{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Room == "" || p.Type == "" || p.Title == "" || p.Body == "" {
		return model.Notification{}, fmt.Errorf("%w: room, type, title, body are required", ErrInvalidPayload)
	}
	return model.Notification{
		Room:  p.Room,
		Type:  p.Type,
		Title: p.Title,
		Body:  p.Body,
	}, nil
}

// RoutingKey builds "<prefix>.<type>", the key consumers bind on.
func RoutingKey(prefix, notificationType string) string {
	if prefix == "" {
		prefix = "notification"
	}
	return prefix + "." + notificationType
}
