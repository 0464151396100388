// Package session owns the auth token, the user profile, the salon list and
// the active salon id. Everything tenant-scoped in the client hangs off the
// active-salon signal published here.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/RS-Eagle/krema-admin-go/internal/api"
	"github.com/RS-Eagle/krema-admin-go/internal/credstore"
	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

// ErrUnknownSalon is returned by SetActiveSalon for an id that is not in the
// current salon list.
var ErrUnknownSalon = errors.New("salon id not in current salon list")

// Store is the session store. It is safe for concurrent use; only Store
// writes the active salon id, resource stores observe it through Watch.
type Store struct {
	api   *api.Client
	creds credstore.Store
	log   *slog.Logger

	mu            sync.Mutex
	token         string
	user          *models.User
	salons        []models.Salon
	activeSalonID int64
	watchers      map[int]chan int64
	nextWatcher   int
}

// New wires a session store to its collaborators. It registers itself as the
// client's token source and 401 hook, so any unauthorized response anywhere
// tears the session down.
func New(client *api.Client, creds credstore.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		api:      client,
		creds:    creds,
		log:      log,
		watchers: make(map[int]chan int64),
	}
	client.SetTokenSource(s.Token)
	client.SetUnauthorizedHook(s.Logout)
	return s
}

// loginResponse is the wire shape of POST /auth/login.
type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// profileResponse is the wire shape of GET /auth/me. Salon membership comes
// as pivot objects that are flattened into models.Salon.
type profileResponse struct {
	User   models.User `json:"user"`
	Salons []struct {
		ID    int64        `json:"id"`
		Role  string       `json:"role"`
		Salon models.Salon `json:"salon"`
	} `json:"salons"`
}

// Login authenticates, persists the token and user profile, then fetches
// the full profile to populate the salon list. A failed login never mutates
// session state.
func (s *Store) Login(ctx context.Context, email, password string) error {
	body, err := s.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   models.LoginRequest{Email: email, Password: password},
		Public: true,
	})
	if err != nil {
		return err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.mu.Unlock()

	if err := s.creds.Save(credstore.Credentials{Token: resp.Token, User: resp.User}); err != nil {
		s.log.Warn("failed to persist credentials", "error", err)
	}

	return s.FetchProfile(ctx)
}

// FetchProfile retrieves the user and salon membership list and re-derives
// the active salon id: the previous id is kept when still present, otherwise
// the first salon in the list becomes active. A missing token makes this a
// silent no-op.
func (s *Store) FetchProfile(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return nil
	}

	body, err := s.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  token,
	})
	if err != nil {
		return err
	}

	var resp profileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode profile response: %w", err)
	}

	salons := make([]models.Salon, 0, len(resp.Salons))
	for _, pivot := range resp.Salons {
		salon := pivot.Salon
		salon.Role = pivot.Role
		salon.PivotID = pivot.ID
		salons = append(salons, salon)
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.salons = salons

	active := s.activeSalonID
	if !salonInList(salons, active) {
		active = 0
		if len(salons) > 0 {
			active = salons[0].ID
		}
	}
	changed := active != s.activeSalonID
	s.activeSalonID = active
	if changed {
		s.notifyLocked(active)
	}
	s.mu.Unlock()

	s.log.Debug("profile refreshed", "salons", len(salons), "active_salon", active)
	return nil
}

// Restore loads persisted credentials and revalidates them against the
// server. Stored state is adopted optimistically first; a 401 during
// revalidation clears it through the unauthorized hook. Transport failures
// leave the optimistic state in place.
func (s *Store) Restore(ctx context.Context) error {
	creds, ok, err := s.creds.Load()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.token = creds.Token
	user := creds.User
	s.user = &user
	if creds.ActiveSalonID != 0 && creds.ActiveSalonID != s.activeSalonID {
		// Adopt the stored scope optimistically; the profile fetch below
		// falls back to the first salon if it is no longer a membership.
		s.activeSalonID = creds.ActiveSalonID
		s.notifyLocked(creds.ActiveSalonID)
	}
	s.mu.Unlock()

	if err := s.FetchProfile(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		s.log.Warn("profile revalidation failed, keeping stored credentials", "error", err)
	}
	return nil
}

// Logout clears the token, user, salon list, active id and persisted
// credentials. Idempotent; logging out an anonymous session does nothing.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.token == "" && s.user == nil && len(s.salons) == 0 && s.activeSalonID == 0 {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.salons = nil
	changed := s.activeSalonID != 0
	s.activeSalonID = 0
	if changed {
		s.notifyLocked(0)
	}
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		s.log.Warn("failed to clear persisted credentials", "error", err)
	}
	s.log.Debug("session cleared")
}

// SetActiveSalon switches the active salon. The id must belong to the
// current salon list.
func (s *Store) SetActiveSalon(id int64) error {
	s.mu.Lock()
	if !salonInList(s.salons, id) {
		s.mu.Unlock()
		return ErrUnknownSalon
	}
	if s.activeSalonID == id {
		s.mu.Unlock()
		return nil
	}
	s.activeSalonID = id
	s.notifyLocked(id)
	s.mu.Unlock()

	s.persistActive()
	return nil
}

// AddSalon creates a salon remotely, appends it to the local list and
// switches the active salon to it. The auto-switch is deliberate: a freshly
// created salon is what the operator wants to work on next.
func (s *Store) AddSalon(ctx context.Context, req models.CreateSalonRequest) (models.Salon, error) {
	body, err := s.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/salons",
		Body:   req,
	})
	if err != nil {
		return models.Salon{}, err
	}

	salon, err := api.DecodeEntity[models.Salon](body)
	if err != nil {
		return models.Salon{}, err
	}
	if salon.Role == "" {
		salon.Role = "owner"
	}

	s.mu.Lock()
	s.salons = append(s.salons, salon)
	s.activeSalonID = salon.ID
	s.notifyLocked(salon.ID)
	s.mu.Unlock()

	s.persistActive()
	s.log.Debug("salon created", "salon_id", salon.ID, "name", salon.Name)
	return salon, nil
}

// persistActive re-saves the credentials with the current active salon so
// the scope survives restarts. Only explicit selections are persisted.
func (s *Store) persistActive() {
	s.mu.Lock()
	creds := credstore.Credentials{Token: s.token, ActiveSalonID: s.activeSalonID}
	if s.user != nil {
		creds.User = *s.user
	}
	s.mu.Unlock()

	if creds.Token == "" {
		return
	}
	if err := s.creds.Save(creds); err != nil {
		s.log.Warn("failed to persist active salon", "error", err)
	}
}

// Watch returns a channel carrying the current active salon id followed by
// every subsequent change. Intermediate values may be coalesced; the latest
// value is always delivered. The returned stop function releases the
// watcher.
func (s *Store) Watch() (<-chan int64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan int64, 1)
	ch <- s.activeSalonID
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// notifyLocked coalesces to the newest value: a watcher that has not drained
// the previous value only ever sees the latest one.
func (s *Store) notifyLocked(id int64) {
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- id:
		default:
		}
	}
}

// Token returns the current bearer token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current user, ok false when anonymous.
func (s *Store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Salons returns a copy of the salon list.
func (s *Store) Salons() []models.Salon {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Salon, len(s.salons))
	copy(out, s.salons)
	return out
}

// ActiveSalonID returns the active salon id, zero when none is selected.
func (s *Store) ActiveSalonID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSalonID
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

func salonInList(salons []models.Salon, id int64) bool {
	if id == 0 {
		return false
	}
	for _, salon := range salons {
		if salon.ID == id {
			return true
		}
	}
	return false
}
