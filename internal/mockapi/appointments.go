package mockapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

// listAppointments uses the nested paginated envelope the real backend
// emits for this endpoint: {"data": {"data": [...], "current_page", "total"}}.
func (s *Server) listAppointments(c *gin.Context) {
	salonID := c.MustGet("salon_id").(int64)

	var status models.AppointmentStatus
	if q := c.Query("status"); q != "" {
		status = models.AppointmentStatus(q)
	}
	var staffID int64
	if q := c.Query("staff_id"); q != "" {
		staffID, _ = strconv.ParseInt(q, 10, 64)
	}
	var from, to time.Time
	if q := c.Query("from"); q != "" {
		from, _ = time.Parse(time.RFC3339, q)
	}
	if q := c.Query("to"); q != "" {
		to, _ = time.Parse(time.RFC3339, q)
	}

	s.mu.Lock()
	items := make([]models.Appointment, 0, len(s.appointments[salonID]))
	for _, appt := range s.appointments[salonID] {
		if status != "" && appt.Status != status {
			continue
		}
		if staffID != 0 && (appt.StaffID == nil || *appt.StaffID != staffID) {
			continue
		}
		if !from.IsZero() && appt.StartAt.Before(from) {
			continue
		}
		if !to.IsZero() && appt.StartAt.After(to) {
			continue
		}
		items = append(items, appt)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"data":         items,
		"current_page": 1,
		"total":        len(items),
	}})
}

func (s *Server) createAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"customer_name": []string{err.Error()}},
		})
		return
	}
	if !req.StartAt.Before(req.EndAt) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"start_at": []string{"The start time must be before the end time."}},
		})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	appt := s.AddAppointment(salonID, models.Appointment{
		ServiceID:     req.ServiceID,
		StaffID:       req.StaffID,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		Status:        models.StatusPending,
	})

	c.JSON(http.StatusCreated, gin.H{"data": appt})
}

func (s *Server) rescheduleAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if !req.StartAt.Before(req.EndAt) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"start_at": []string{"The start time must be before the end time."}},
		})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments[salonID] {
		appt := &s.appointments[salonID][i]
		if appt.ID != id {
			continue
		}
		appt.StartAt = req.StartAt
		appt.EndAt = req.EndAt
		if req.Notes != "" {
			appt.Notes = req.Notes
		}
		c.JSON(http.StatusOK, gin.H{"data": *appt})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "appointment not found"})
}

func (s *Server) setAppointmentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status models.AppointmentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"status": []string{"The selected status is invalid."}},
		})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments[salonID] {
		appt := &s.appointments[salonID][i]
		if appt.ID != id {
			continue
		}
		appt.Status = req.Status
		c.JSON(http.StatusOK, gin.H{"data": *appt})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "appointment not found"})
}
