package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/gin-gonic/gin"
)

type eventService interface {
	Create(ctx context.Context, data dto.EventCreate) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	GetPublicUpcoming(ctx context.Context) ([]entity.Event, error)
	GetHistory(ctx context.Context, limit, offset int) ([]entity.HistoricalEvent, error)
	RSVP(ctx context.Context, eventID, userID, alias string) (*entity.Event, error)
	CancelRSVP(ctx context.Context, eventID, userID string) (*entity.Event, error)
	InviteUsers(ctx context.Context, eventID string, identifiers []string, personalMessage string) (*dto.InviteResult, error)
	Cancel(ctx context.Context, eventID, actorID string, sameDay bool) error
	ArchiveDue(ctx context.Context) (*dto.ArchiveResult, error)
	Rate(ctx context.Context, eventID string, data dto.RateFunction) (*entity.HistoricalEvent, error)
}

type EventHandler struct {
	events eventService
}

func NewEventHandler(events eventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Name           string   `json:"function_name" binding:"required"`
	Location       string   `json:"location" binding:"required"`
	Date           string   `json:"date" binding:"required"`
	Description    string   `json:"description"`
	EmojiVibe      []string `json:"emoji_vibe"`
	MaxCapacity    int      `json:"max_capacity"`
	Visibility     string   `json:"public_or_private" binding:"omitempty,oneof=public private"`
	ClubAffiliated bool     `json:"club_affiliated"`
	ClubName       string   `json:"club_name"`
	OrganizerID    string   `json:"organizer_id" binding:"required,uuid"`
	OrganizerAlias string   `json:"organizer_alias"`
}

func (h *EventHandler) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.Create(c.Request.Context(), dto.EventCreate{
		Name:           req.Name,
		Location:       req.Location,
		Date:           req.Date,
		Description:    req.Description,
		EmojiVibe:      req.EmojiVibe,
		MaxCapacity:    req.MaxCapacity,
		Visibility:     req.Visibility,
		ClubAffiliated: req.ClubAffiliated,
		ClubName:       req.ClubName,
		OrganizerID:    req.OrganizerID,
		OrganizerAlias: req.OrganizerAlias,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "event": event})
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.GetPublicUpcoming(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.events.GetHistory(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type rsvpRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Alias  string `json:"user_alias"`
}

func (h *EventHandler) RSVP(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.RSVP(c.Request.Context(), c.Param("id"), req.UserID, req.Alias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RSVP successful", "rsvp_count": event.RSVPCount})
}

func (h *EventHandler) CancelRSVP(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	event, err := h.events.CancelRSVP(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RSVP cancelled", "rsvp_count": event.RSVPCount})
}

type inviteRequest struct {
	Identifiers     []string `json:"invited_users" binding:"required,min=1"`
	PersonalMessage string   `json:"personal_message"`
}

func (h *EventHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.events.InviteUsers(c.Request.Context(), c.Param("id"), req.Identifiers, req.PersonalMessage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invited":       result.Invited,
		"total_invited": result.TotalInvited,
	})
}

type cancelEventRequest struct {
	ActorID string `json:"user_id" binding:"required,uuid"`
	SameDay bool   `json:"same_day"`
}

func (h *EventHandler) Cancel(c *gin.Context) {
	var req cancelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.events.Cancel(c.Request.Context(), c.Param("id"), req.ActorID, req.SameDay); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event cancelled successfully"})
}

type rateRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment"`
	Attended bool   `json:"attended"`
}

func (h *EventHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hist, err := h.events.Rate(c.Request.Context(), c.Param("id"), dto.RateFunction{
		UserID:   req.UserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		Attended: req.Attended,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"average_rating": hist.AverageRating,
		"total_ratings":  hist.TotalRatings,
		"finalized":      hist.RatingFinalized,
	})
}

// Archive triggers the global sweep, normally run by the scheduler.
func (h *EventHandler) Archive(c *gin.Context) {
	result, err := h.events.ArchiveDue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Past events moved to historical successfully",
		"events_moved": result.EventsMoved,
	})
}
