package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/dakshgoel/schedulr/internal/service/meetings"
	"github.com/gin-gonic/gin"
)

type MeetingHandler struct {
	service meetings.MeetingUseCase
}

type bookMeetingRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

type hostResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type eventResponse struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	StartTime       string       `json:"start_time"`
	DurationMinutes int          `json:"duration_minutes"`
	Host            hostResponse `json:"host"`
}

type meetingResponse struct {
	ID            string         `json:"id"`
	EventID       string         `json:"event_id"`
	StartTime     string         `json:"start_time"`
	GoogleEventID string         `json:"google_event_id"`
	Event         *eventResponse `json:"event,omitempty"`
}

func NewMeetingHandler(service meetings.MeetingUseCase) *MeetingHandler {
	return &MeetingHandler{service: service}
}

func (h *MeetingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.book)
	router.DELETE("/:id", h.cancel)
	router.GET("/", h.list)
}

func (h *MeetingHandler) book(c *gin.Context) {
	var req bookMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.service.BookMeeting(c.Request.Context(), sessionToken(c), req.EventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toMeetingResponse(meeting))
}

func (h *MeetingHandler) cancel(c *gin.Context) {
	if err := h.service.CancelMeeting(c.Request.Context(), sessionToken(c), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *MeetingHandler) list(c *gin.Context) {
	kind := c.DefaultQuery("type", "upcoming")

	list, err := h.service.GetUserMeetings(c.Request.Context(), sessionToken(c), kind)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := make([]meetingResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toMeetingResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// sessionToken pulls the caller's session JWT from the Authorization
// header. An absent header is left empty and fails closed downstream.
func sessionToken(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCalendarInsert):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toMeetingResponse(m *domain.Meeting) meetingResponse {
	resp := meetingResponse{
		ID:            m.ID,
		EventID:       m.EventID,
		StartTime:     m.StartTime.Format(time.RFC3339),
		GoogleEventID: m.GoogleEventID,
	}
	if m.Event != nil {
		event := eventResponse{
			ID:              m.Event.ID,
			Title:           m.Event.Title,
			Description:     m.Event.Description,
			StartTime:       m.Event.StartTime.Format(time.RFC3339),
			DurationMinutes: m.Event.DurationMinutes,
		}
		if m.Event.Host != nil {
			event.Host = hostResponse{Name: m.Event.Host.Name, Email: m.Event.Host.Email}
		}
		resp.Event = &event
	}
	return resp
}
