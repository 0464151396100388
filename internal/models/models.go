package models

import "time"

// User is the authenticated operator.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Salon is one tenant the user belongs to. Role and PivotID come from the
// membership pivot returned by /auth/me; a salon is never edited client-side
// after creation.
type Salon struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	Role     string `json:"role,omitempty"`
	PivotID  int64  `json:"pivot_id,omitempty"`
}

// Service is a bookable catalog entry. Price is in minor currency units.
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	DurationMin int    `json:"duration_min"`
	BufferMin   int    `json:"buffer_min"`
	IsActive    bool   `json:"is_active"`
	ImageURL    string `json:"image_url,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// Staff is a salon employee available for appointments.
type Staff struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusDone      AppointmentStatus = "done"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ValidStatus reports whether s is one of the four appointment states.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a customer booking for a service, optionally assigned to a
// staff member.
type Appointment struct {
	ID            int64             `json:"id"`
	ServiceID     int64             `json:"service_id"`
	StaffID       *int64            `json:"staff_id,omitempty"`
	StartAt       time.Time         `json:"start_at"`
	EndAt         time.Time         `json:"end_at"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        AppointmentStatus `json:"status"`
}
