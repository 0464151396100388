package store

import (
	"context"
	"log/slog"

	"github.com/RS-Eagle/krema-admin-go/internal/api"
	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

// Staff mirrors the staff roster of the active salon.
type Staff struct {
	collection[models.Staff]
}

func NewStaff(client *api.Client, signal SalonSignal, log *slog.Logger) *Staff {
	if log == nil {
		log = slog.Default()
	}
	s := &Staff{}
	s.client = client
	s.log = log
	s.name = "staff"
	s.path = "/catalog/staff"
	s.idOf = func(v models.Staff) int64 { return v.ID }
	s.nameOf = func(v models.Staff) string { return v.Name }
	s.activeOf = func(v models.Staff) bool { return v.IsActive }
	s.fetchFn = s.defaultFetch
	s.init(signal)
	return s
}

func (s *Staff) Create(ctx context.Context, req models.CreateStaffRequest) (models.Staff, error) {
	return s.create(ctx, req)
}

func (s *Staff) Update(ctx context.Context, id int64, req models.UpdateStaffRequest) (models.Staff, error) {
	return s.update(ctx, id, req, func(item models.Staff) models.Staff {
		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Title != nil {
			item.Title = *req.Title
		}
		if req.AvatarURL != nil {
			item.AvatarURL = *req.AvatarURL
		}
		if req.SortOrder != nil {
			item.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			item.IsActive = *req.IsActive
		}
		return item
	})
}

func (s *Staff) Delete(ctx context.Context, id int64) error {
	return s.remove(ctx, id)
}
