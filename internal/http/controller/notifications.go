package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/http/dto"
	"notistore/internal/http/resp"
	"notistore/internal/model"
	"notistore/internal/queue"
	"notistore/internal/repository"
	"notistore/internal/service/notify"
	"notistore/internal/sse"
)

type Handler struct {
	cfg *config.Config
	svc *notify.Service
	hub *sse.Hub
	log *zap.Logger
	pub queue.Publisher
}

func NewHandler(cfg *config.Config, svc *notify.Service, hub *sse.Hub, logger *zap.Logger, publisher queue.Publisher) *Handler {
	return &Handler{cfg: cfg, svc: svc, hub: hub, log: logger, pub: publisher}
}

func (h *Handler) CreateNotification(c *gin.Context) {
	req, ok := bindCreateRequest(c)
	if !ok {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), model.Notification{
		Room:  req.Room,
		Type:  req.Type,
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		if h.writeDomainError(c, err) {
			return
		}
		h.log.Error("create notification failed",
			zap.String("room", req.Room),
			zap.String("type", req.Type),
			zap.String("title", req.Title),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to create notification"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) PublishNotification(c *gin.Context) {
	req, ok := bindCreateRequest(c)
	if !ok {
		return
	}
	if err := domain.ValidateNotification(req.Room, req.Type, req.Title, req.Body); err != nil {
		h.writeDomainError(c, err)
		return
	}

	payload, err := queue.EncodeNotification(queue.Payload{
		Room:  req.Room,
		Type:  req.Type,
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		h.log.Error("publish payload marshal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	routingKey := queue.RoutingKey(h.cfg.RabbitPublishPrefix, req.Type)
	if err := h.pub.Publish(c.Request.Context(), payload, routingKey); err != nil {
		h.log.Error("publish notification failed",
			zap.String("room", req.Room),
			zap.String("type", req.Type),
			zap.String("title", req.Title),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

func (h *Handler) GetNotification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	n, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeStoreError(c, err, "failed to get notification", zap.Int64("id", id))
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	n, err := h.svc.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.writeStoreError(c, err, "failed to mark notification read", zap.Int64("id", id))
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeStoreError(c, err, "failed to delete notification", zap.Int64("id", id))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	room := c.Param("room")
	limit, ok := h.queryLimit(c)
	if !ok {
		return
	}
	opts := repository.ListOptions{Limit: limit}
	if v := c.Query("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "unread must be a boolean"})
			return
		}
		opts.UnreadOnly = unread
	}
	if v := c.Query("before"); v != "" {
		before, err := strconv.ParseInt(v, 10, 64)
		if err != nil || before <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "before must be a positive id"})
			return
		}
		opts.BeforeID = before
	}

	notifications, err := h.svc.ListHistory(c.Request.Context(), room, opts)
	if err != nil {
		h.writeStoreError(c, err, "failed to list notifications", zap.String("room", room))
		return
	}
	out := dto.ListNotificationsResponse{Room: room, Notifications: notifications}
	if out.Notifications == nil {
		out.Notifications = []model.Notification{}
	}
	if len(notifications) > 0 && len(notifications) == limit {
		out.NextBefore = notifications[len(notifications)-1].ID
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	room := c.Param("room")
	n, err := h.svc.UnreadCount(c.Request.Context(), room)
	if err != nil {
		h.writeStoreError(c, err, "failed to count unread notifications", zap.String("room", room))
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Room: room, Unread: n})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	room := c.Param("room")
	n, err := h.svc.MarkAllRead(c.Request.Context(), room)
	if err != nil {
		h.writeStoreError(c, err, "failed to mark notifications read", zap.String("room", room))
		return
	}
	c.JSON(http.StatusOK, dto.MarkAllReadResponse{Room: room, Updated: n})
}

func (h *Handler) SSE(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "room required"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported", zap.String("room", room))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}

	// Subscribe before reading history so nothing created in between is lost.
	// Live events already covered by the replay are skipped below.
	client := &sse.Client{
		Room: room,
		Ch:   make(chan model.Notification, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	var replayedID int64
	// limit=0 subscribes to live events only.
	if limit > 0 {
		history, err := h.svc.ListHistory(c.Request.Context(), room, repository.ListOptions{Limit: limit})
		if err != nil {
			h.log.Error("list history failed", zap.String("room", room), zap.Int("limit", limit), zap.Error(err))
		}
		for i := len(history) - 1; i >= 0; i-- {
			if err := writeNotification(c.Writer, history[i]); err != nil {
				h.log.Error("write history notification failed", zap.String("room", room), zap.Error(err))
				return
			}
			replayedID = max(replayedID, history[i].ID)
		}
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.cfg.SSEHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				h.log.Error("heartbeat write failed", zap.String("room", room), zap.Error(err))
				return
			}
			flusher.Flush()
		case notification, ok := <-client.Ch:
			if !ok {
				return
			}
			if notification.ID <= replayedID {
				continue
			}
			if err := writeNotification(c.Writer, notification); err != nil {
				h.log.Error("write notification failed", zap.String("room", room), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func bindCreateRequest(c *gin.Context) (dto.CreateNotificationRequest, bool) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return req, false
	}
	if req.Room == "" || req.Type == "" || req.Title == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "room, type, title, body are required"})
		return req, false
	}
	return req, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// queryLimit resolves ?limit against the configured default and maximum.
func (h *Handler) queryLimit(c *gin.Context) (int, bool) {
	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "limit must be a positive integer"})
			return 0, false
		}
		limit = n
	}
	if h.cfg.MaxListLimit > 0 && (limit <= 0 || limit > h.cfg.MaxListLimit) {
		limit = h.cfg.MaxListLimit
	}
	return limit, true
}

// writeDomainError answers validation errors with 400 and reports whether it
// wrote a response.
func (h *Handler) writeDomainError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidNotificationType):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "type must be one of: info, warning, system"})
		return true
	case errors.Is(err, domain.ErrInvalidNotification):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
		return true
	}
	return false
}

func (h *Handler) writeStoreError(c *gin.Context, err error, message string, fields ...zap.Field) {
	if errors.Is(err, domain.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeNotFound, Message: "notification not found"})
		return
	}
	h.log.Error(message, append(fields, zap.Error(err))...)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: message})
}

func writeNotification(w http.ResponseWriter, notification model.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	// SSE frame mapping:
	// - id: notification.ID (event id)
	// - event: "notification" (JS uses addEventListener("notification", ...))
	// - data: JSON payload containing room/type/title/body/read/created_at
	_, err = fmt.Fprintf(w, "id: %d\nevent: notification\ndata: %s\n\n", notification.ID, payload)
	return err
}
