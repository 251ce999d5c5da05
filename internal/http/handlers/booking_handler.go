// README: Booking handlers: start a session, answer its prompts, rate rides, quote fares.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"citycab/internal/http/middleware"
	"citycab/internal/modules/booking"
	"citycab/internal/modules/fleet"
	"citycab/internal/types"
)

type BookingHandler struct {
	sessions *booking.Manager
	booking  *booking.Service
}

func NewBookingHandler(sessions *booking.Manager, svc *booking.Service) *BookingHandler {
	return &BookingHandler{sessions: sessions, booking: svc}
}

type createBookingReq struct {
	RiderID     string `json:"rider_id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Class       string `json:"class"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RiderID == "" || req.Source == "" || req.Destination == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	class, err := fleet.ParseClass(req.Class)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	sess := h.sessions.Start(booking.Request{
		RequestID:   middleware.RequestID(c),
		RiderID:     types.ID(req.RiderID),
		Source:      req.Source,
		Destination: req.Destination,
		Class:       class,
	})
	writeJSON(c, http.StatusAccepted, gin.H{"session_id": sess.ID()})
}

func (h *BookingHandler) session(c *gin.Context) (*booking.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *BookingHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, sess.View())
}

type confirmReq struct {
	Accept bool `json:"accept"`
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := sess.Confirm(req.Accept); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

type classReq struct {
	Class  string `json:"class"`
	Accept bool   `json:"accept"`
}

func (h *BookingHandler) ChooseClass(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req classReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var class fleet.Class
	if req.Accept {
		parsed, err := fleet.ParseClass(req.Class)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		class = parsed
	}
	if err := sess.SelectClass(class, req.Accept); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

type verifyReq struct {
	Code string `json:"code"`
}

func (h *BookingHandler) Verify(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		writeError(c, http.StatusBadRequest, "missing code")
		return
	}
	if err := sess.SubmitCode(req.Code); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

type ratingReq struct {
	Rating *int `json:"rating"`
}

// Rate answers the in-session rating prompt; a missing rating skips it.
func (h *BookingHandler) Rate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req ratingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	stars := 0
	if req.Rating != nil {
		stars = *req.Rating
	}
	if err := sess.SubmitRating(stars, req.Rating != nil); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// RateRide is the later rating path for a completed ride.
func (h *BookingHandler) RateRide(c *gin.Context) {
	var req ratingReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating == nil {
		writeError(c, http.StatusBadRequest, "missing rating")
		return
	}
	bookingID := c.Param("booking_id")
	if err := h.booking.SubmitRating(c.Request.Context(), bookingID, *req.Rating); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking_id": bookingID, "rating": *req.Rating})
}

func (h *BookingHandler) Quote(c *gin.Context) {
	source, destination := c.Query("source"), c.Query("destination")
	if source == "" || destination == "" {
		writeError(c, http.StatusBadRequest, "source and destination are required")
		return
	}
	class, err := fleet.ParseClass(c.DefaultQuery("class", string(fleet.ClassTwoWheeler)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	q, err := h.booking.Quote(source, destination, class)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}
