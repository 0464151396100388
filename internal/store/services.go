package store

import (
	"context"
	"log/slog"

	"github.com/RS-Eagle/krema-admin-go/internal/api"
	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

// Services mirrors the catalog services of the active salon.
type Services struct {
	collection[models.Service]
}

func NewServices(client *api.Client, signal SalonSignal, log *slog.Logger) *Services {
	if log == nil {
		log = slog.Default()
	}
	s := &Services{}
	s.client = client
	s.log = log
	s.name = "services"
	s.path = "/catalog/services"
	s.idOf = func(v models.Service) int64 { return v.ID }
	s.nameOf = func(v models.Service) string { return v.Name }
	s.activeOf = func(v models.Service) bool { return v.IsActive }
	s.fetchFn = s.defaultFetch
	s.init(signal)
	return s
}

func (s *Services) Create(ctx context.Context, req models.CreateServiceRequest) (models.Service, error) {
	return s.create(ctx, req)
}

// Update patches the service remotely. The server's returned entity wins
// when present; otherwise the submitted fields are merged into the local
// item.
func (s *Services) Update(ctx context.Context, id int64, req models.UpdateServiceRequest) (models.Service, error) {
	return s.update(ctx, id, req, func(item models.Service) models.Service {
		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Price != nil {
			item.Price = *req.Price
		}
		if req.DurationMin != nil {
			item.DurationMin = *req.DurationMin
		}
		if req.BufferMin != nil {
			item.BufferMin = *req.BufferMin
		}
		if req.IsActive != nil {
			item.IsActive = *req.IsActive
		}
		if req.ImageURL != nil {
			item.ImageURL = *req.ImageURL
		}
		if req.SortOrder != nil {
			item.SortOrder = *req.SortOrder
		}
		return item
	})
}

func (s *Services) Delete(ctx context.Context, id int64) error {
	return s.remove(ctx, id)
}
