package models

import "time"

// DTOs for API requests. Pointer fields on update requests distinguish
// "leave unchanged" from an explicit zero value; the same tags drive
// validation in the stub server.

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateSalonRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Currency string `json:"currency,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type CreateServiceRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price" binding:"min=0"`
	DurationMin int    `json:"duration_min" binding:"required,min=1"`
	BufferMin   int    `json:"buffer_min,omitempty" binding:"omitempty,min=0"`
	IsActive    *bool  `json:"is_active,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
}

type UpdateServiceRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=2,max=255"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,min=0"`
	DurationMin *int    `json:"duration_min,omitempty" binding:"omitempty,min=1"`
	BufferMin   *int    `json:"buffer_min,omitempty" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

type CreateStaffRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=255"`
	Title     string `json:"title,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

type UpdateStaffRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,min=2,max=255"`
	Title     *string `json:"title,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type CreateAppointmentRequest struct {
	ServiceID     int64     `json:"service_id" binding:"required"`
	StaffID       *int64    `json:"staff_id,omitempty"`
	StartAt       time.Time `json:"start_at" binding:"required"`
	EndAt         time.Time `json:"end_at" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty" binding:"omitempty,email"`
	Notes         string    `json:"notes,omitempty"`
}

type RescheduleRequest struct {
	StartAt  time.Time `json:"start_at" binding:"required"`
	EndAt    time.Time `json:"end_at" binding:"required"`
	Notes    string    `json:"notes,omitempty"`
	Timezone string    `json:"timezone,omitempty"`
}

// AppointmentFilter narrows GET /appointments. Zero values are omitted from
// the query string.
type AppointmentFilter struct {
	Status  AppointmentStatus
	StaffID int64
	From    time.Time
	To      time.Time
}
