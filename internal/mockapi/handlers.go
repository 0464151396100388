package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	email := normalizeEmail(req.Email)

	s.mu.Lock()
	var account *user
	for i := range s.users {
		if s.users[i].Email == email {
			account = &s.users[i]
			break
		}
	}
	s.mu.Unlock()

	if account == nil || !checkPasswordHash(req.Password, account.passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := s.generateToken(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": account.User})
}

func (s *Server) me(c *gin.Context) {
	userID := c.MustGet("user_id").(int64)

	s.mu.Lock()
	defer s.mu.Unlock()

	var account *user
	for i := range s.users {
		if s.users[i].ID == userID {
			account = &s.users[i]
			break
		}
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	pivots := make([]gin.H, 0, len(s.memberships[userID]))
	for _, m := range s.memberships[userID] {
		pivots = append(pivots, gin.H{
			"id":    m.pivotID,
			"role":  m.role,
			"salon": s.salons[m.salonID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"user": account.User, "salons": pivots})
}

func (s *Server) createSalon(c *gin.Context) {
	var req models.CreateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"name": []string{"The name field is required."}},
		})
		return
	}

	userID := c.MustGet("user_id").(int64)
	salon := s.AddSalon(userID, models.Salon{
		Name:     req.Name,
		Currency: req.Currency,
		Timezone: req.Timezone,
	}, "owner")
	salon.Role = "owner"

	c.JSON(http.StatusCreated, gin.H{"data": salon})
}
