package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RS-Eagle/krema-admin-go/internal/api"
	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

// Appointments mirrors the booking list of the active salon.
type Appointments struct {
	collection[models.Appointment]
}

func NewAppointments(client *api.Client, signal SalonSignal, log *slog.Logger) *Appointments {
	if log == nil {
		log = slog.Default()
	}
	a := &Appointments{}
	a.client = client
	a.log = log
	a.name = "appointments"
	a.path = "/appointments"
	a.idOf = func(v models.Appointment) int64 { return v.ID }
	a.nameOf = func(v models.Appointment) string { return v.CustomerName }
	a.fetchFn = a.defaultFetch
	a.init(signal)
	return a
}

// Fetch replaces the collection with a server-side filtered listing. The
// result is discarded if the active salon changed while the request was in
// flight.
func (a *Appointments) Fetch(ctx context.Context, filter models.AppointmentFilter) error {
	salonID, gen, err := a.scope()
	if err != nil {
		return err
	}

	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.StaffID != 0 {
		query.Set("staff_id", strconv.FormatInt(filter.StaffID, 10))
	}
	if !filter.From.IsZero() {
		query.Set("from", filter.From.Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		query.Set("to", filter.To.Format(time.RFC3339))
	}

	body, err := a.client.Do(ctx, api.Request{
		Method:  http.MethodGet,
		Path:    a.path,
		Query:   query,
		SalonID: salonID,
	})
	if err != nil {
		return err
	}
	coll, err := api.DecodeCollection[models.Appointment](body)
	if err != nil {
		return err
	}
	a.install(gen, coll.Items)
	return nil
}

// Create books an appointment. The time range is validated locally before
// any network call.
func (a *Appointments) Create(ctx context.Context, req models.CreateAppointmentRequest) (models.Appointment, error) {
	if !req.StartAt.Before(req.EndAt) {
		return models.Appointment{}, ErrInvalidTimeRange
	}
	return a.create(ctx, req)
}

// Reschedule moves an appointment. The server's returned object is
// preferred; when the response carries no entity the whole collection is
// re-fetched so local state never silently desyncs.
func (a *Appointments) Reschedule(ctx context.Context, id int64, req models.RescheduleRequest) error {
	if !req.StartAt.Before(req.EndAt) {
		return ErrInvalidTimeRange
	}
	salonID, gen, err := a.scope()
	if err != nil {
		return err
	}

	body, err := a.client.Do(ctx, api.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("%s/%d/reschedule", a.path, id),
		Body:    req,
		SalonID: salonID,
	})
	if err != nil {
		return err
	}

	if item, derr := api.DecodeEntity[models.Appointment](body); derr == nil && item.ID == id {
		a.replace(gen, id, item)
		return nil
	}
	if err := a.Refresh(ctx); err != nil {
		// The reschedule itself succeeded; the stale list will catch up on
		// the next fetch.
		a.log.Warn("refetch after reschedule failed", "error", err)
	}
	return nil
}

// SetStatus transitions an appointment's status. The local patch is purely
// optimistic; the server response is not reconciled.
func (a *Appointments) SetStatus(ctx context.Context, id int64, status models.AppointmentStatus) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	salonID, gen, err := a.scope()
	if err != nil {
		return err
	}

	payload := struct {
		Status models.AppointmentStatus `json:"status"`
	}{Status: status}

	if _, err := a.client.Do(ctx, api.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("%s/%d/status", a.path, id),
		Body:    payload,
		SalonID: salonID,
	}); err != nil {
		return err
	}

	a.mutateIf(gen, func(items []models.Appointment) []models.Appointment {
		for i := range items {
			if items[i].ID == id {
				items[i].Status = status
			}
		}
		return items
	})
	return nil
}
