package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func (s *Server) listServices(c *gin.Context) {
	salonID := c.MustGet("salon_id").(int64)
	s.mu.Lock()
	items := make([]models.Service, len(s.services[salonID]))
	copy(items, s.services[salonID])
	s.mu.Unlock()

	// Catalog endpoints use the flat collection envelope.
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) createService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"name": []string{err.Error()}},
		})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	svc := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		DurationMin: req.DurationMin,
		BufferMin:   req.BufferMin,
		IsActive:    true,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	svc = s.AddService(salonID, svc)

	c.JSON(http.StatusCreated, gin.H{"data": svc})
}

func (s *Server) updateService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services[salonID] {
		svc := &s.services[salonID][i]
		if svc.ID != id {
			continue
		}
		if req.Name != nil {
			svc.Name = *req.Name
		}
		if req.Description != nil {
			svc.Description = *req.Description
		}
		if req.Price != nil {
			svc.Price = *req.Price
		}
		if req.DurationMin != nil {
			svc.DurationMin = *req.DurationMin
		}
		if req.BufferMin != nil {
			svc.BufferMin = *req.BufferMin
		}
		if req.IsActive != nil {
			svc.IsActive = *req.IsActive
		}
		if req.ImageURL != nil {
			svc.ImageURL = *req.ImageURL
		}
		if req.SortOrder != nil {
			svc.SortOrder = *req.SortOrder
		}
		c.JSON(http.StatusOK, gin.H{"data": *svc})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "service not found"})
}

func (s *Server) deleteService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	salonID := c.MustGet("salon_id").(int64)

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.services[salonID]
	for i := range items {
		if items[i].ID == id {
			s.services[salonID] = append(items[:i], items[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "service not found"})
}

func (s *Server) listStaff(c *gin.Context) {
	salonID := c.MustGet("salon_id").(int64)
	s.mu.Lock()
	items := make([]models.Staff, len(s.staff[salonID]))
	copy(items, s.staff[salonID])
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) createStaff(c *gin.Context) {
	var req models.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"name": []string{err.Error()}},
		})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	st := models.Staff{
		Name:      req.Name,
		Title:     req.Title,
		AvatarURL: req.AvatarURL,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}
	st = s.AddStaff(salonID, st)

	c.JSON(http.StatusCreated, gin.H{"data": st})
}

func (s *Server) updateStaff(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	salonID := c.MustGet("salon_id").(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff[salonID] {
		st := &s.staff[salonID][i]
		if st.ID != id {
			continue
		}
		if req.Name != nil {
			st.Name = *req.Name
		}
		if req.Title != nil {
			st.Title = *req.Title
		}
		if req.AvatarURL != nil {
			st.AvatarURL = *req.AvatarURL
		}
		if req.SortOrder != nil {
			st.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			st.IsActive = *req.IsActive
		}
		c.JSON(http.StatusOK, gin.H{"data": *st})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "staff member not found"})
}

func (s *Server) deleteStaff(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	salonID := c.MustGet("salon_id").(int64)

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.staff[salonID]
	for i := range items {
		if items[i].ID == id {
			s.staff[salonID] = append(items[:i], items[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "staff member deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "staff member not found"})
}
