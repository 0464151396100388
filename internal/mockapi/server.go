// Package mockapi is an in-memory stand-in for the Krema admin API, used by
// tests and by the mockapi command for local development. It implements the
// wire contract the client consumes, including the inconsistent response
// envelopes of the real backend: plain {"data": [...]} for catalog
// collections and nested pagination for appointments.
package mockapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

type user struct {
	models.User
	passwordHash string
}

type membership struct {
	pivotID int64
	salonID int64
	role    string
}

// Server holds the fixture state. All collections are keyed by salon id.
type Server struct {
	jwtSecret string
	tokenTTL  time.Duration
	log       *slog.Logger

	mu           sync.Mutex
	users        []user
	salons       map[int64]models.Salon
	memberships  map[int64][]membership
	services     map[int64][]models.Service
	staff        map[int64][]models.Staff
	appointments map[int64][]models.Appointment
	nextID       int64
}

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Log       *slog.Logger
}

func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "mock-api-secret-not-for-production"
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Server{
		jwtSecret:    opts.JWTSecret,
		tokenTTL:     opts.TokenTTL,
		log:          opts.Log,
		salons:       make(map[int64]models.Salon),
		memberships:  make(map[int64][]membership),
		services:     make(map[int64][]models.Service),
		staff:        make(map[int64][]models.Staff),
		appointments: make(map[int64][]models.Appointment),
		nextID:       100,
	}
}

// Router builds the gin engine exposing the API.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/login", s.login)

	authed := router.Group("/")
	authed.Use(s.authMiddleware())
	{
		authed.GET("/auth/me", s.me)
		authed.POST("/salons", s.createSalon)
	}

	scoped := router.Group("/")
	scoped.Use(s.authMiddleware())
	scoped.Use(s.salonMiddleware())
	{
		scoped.GET("/catalog/services", s.listServices)
		scoped.POST("/catalog/services", s.createService)
		scoped.PATCH("/catalog/services/:id", s.updateService)
		scoped.DELETE("/catalog/services/:id", s.deleteService)

		scoped.GET("/catalog/staff", s.listStaff)
		scoped.POST("/catalog/staff", s.createStaff)
		scoped.PATCH("/catalog/staff/:id", s.updateStaff)
		scoped.DELETE("/catalog/staff/:id", s.deleteStaff)

		scoped.GET("/appointments", s.listAppointments)
		scoped.POST("/appointments", s.createAppointment)
		scoped.POST("/appointments/:id/reschedule", s.rescheduleAppointment)
		scoped.POST("/appointments/:id/status", s.setAppointmentStatus)
	}

	return router
}

func (s *Server) allocID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) isMember(userID, salonID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships[userID] {
		if m.salonID == salonID {
			return true
		}
	}
	return false
}

// AddUser seeds a user with a bcrypt-hashed password and returns its id.
func (s *Server) AddUser(name, email, password string) (int64, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	s.users = append(s.users, user{
		User:         models.User{ID: id, Name: name, Email: normalizeEmail(email)},
		passwordHash: hash,
	})
	return id, nil
}

// AddSalon seeds a salon and makes userID a member with the given role.
func (s *Server) AddSalon(userID int64, salon models.Salon, role string) models.Salon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if salon.ID == 0 {
		salon.ID = s.allocID()
	}
	if salon.Currency == "" {
		salon.Currency = "EUR"
	}
	if salon.Timezone == "" {
		salon.Timezone = "Europe/Berlin"
	}
	s.salons[salon.ID] = salon
	s.memberships[userID] = append(s.memberships[userID], membership{
		pivotID: s.allocID(),
		salonID: salon.ID,
		role:    role,
	})
	return salon
}

// AddService seeds a service into a salon's catalog.
func (s *Server) AddService(salonID int64, svc models.Service) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.allocID()
	}
	s.services[salonID] = append(s.services[salonID], svc)
	return svc
}

// AddStaff seeds a staff member into a salon's roster.
func (s *Server) AddStaff(salonID int64, st models.Staff) models.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.allocID()
	}
	s.staff[salonID] = append(s.staff[salonID], st)
	return st
}

// AddAppointment seeds an appointment into a salon's booking list.
func (s *Server) AddAppointment(salonID int64, appt models.Appointment) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if appt.ID == 0 {
		appt.ID = s.allocID()
	}
	if appt.Status == "" {
		appt.Status = models.StatusPending
	}
	s.appointments[salonID] = append(s.appointments[salonID], appt)
	return appt
}

// SeedDemo loads a small demo data set and returns the demo login.
func (s *Server) SeedDemo() (email, password string, err error) {
	email, password = "demo@krema.app", "password"
	userID, err := s.AddUser("Demo Operator", email, password)
	if err != nil {
		return "", "", err
	}

	main := s.AddSalon(userID, models.Salon{Name: "Krema Mitte"}, "owner")
	second := s.AddSalon(userID, models.Salon{Name: "Krema Kreuzberg"}, "manager")

	haircut := s.AddService(main.ID, models.Service{Name: "Haircut", Price: 3500, DurationMin: 30, BufferMin: 5, IsActive: true, SortOrder: 1})
	s.AddService(main.ID, models.Service{Name: "Coloring", Price: 9000, DurationMin: 90, BufferMin: 15, IsActive: true, SortOrder: 2})
	s.AddService(second.ID, models.Service{Name: "Beard Trim", Price: 1800, DurationMin: 20, IsActive: true, SortOrder: 1})

	barber := s.AddStaff(main.ID, models.Staff{Name: "Alex Meyer", Title: "Senior Stylist", IsActive: true, SortOrder: 1})
	s.AddStaff(second.ID, models.Staff{Name: "Sam Richter", Title: "Barber", IsActive: true, SortOrder: 1})

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	s.AddAppointment(main.ID, models.Appointment{
		ServiceID:    haircut.ID,
		StaffID:      &barber.ID,
		StartAt:      start,
		EndAt:        start.Add(30 * time.Minute),
		CustomerName: "Maria Lopez",
		Status:       models.StatusConfirmed,
	})
	return email, password, nil
}
