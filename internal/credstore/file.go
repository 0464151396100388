package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
	salonFile = "salon"
)

// FileStore keeps the token as a raw string, the user profile as JSON and
// the active salon id as a decimal string under a base directory, one file
// per local-storage key.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) Save(creds Credentials) error {
	if err := os.MkdirAll(s.baseDir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, tokenFile), []byte(creds.Token), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, userFile), userJSON, 0600); err != nil {
		return fmt.Errorf("failed to write user profile: %w", err)
	}
	salon := strconv.FormatInt(creds.ActiveSalonID, 10)
	if err := os.WriteFile(filepath.Join(s.baseDir, salonFile), []byte(salon), 0600); err != nil {
		return fmt.Errorf("failed to write active salon: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (Credentials, bool, error) {
	token, err := os.ReadFile(filepath.Join(s.baseDir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, fmt.Errorf("failed to read token: %w", err)
	}

	var user models.User
	userJSON, err := os.ReadFile(filepath.Join(s.baseDir, userFile))
	if err != nil && !os.IsNotExist(err) {
		return Credentials{}, false, fmt.Errorf("failed to read user profile: %w", err)
	}
	if len(userJSON) > 0 {
		if err := json.Unmarshal(userJSON, &user); err != nil {
			// Corrupt profile: treat the whole store as empty so the
			// caller falls back to a fresh login.
			return Credentials{}, false, nil
		}
	}

	var salonID int64
	if raw, err := os.ReadFile(filepath.Join(s.baseDir, salonFile)); err == nil {
		salonID, _ = strconv.ParseInt(string(raw), 10, 64)
	}
	return Credentials{Token: string(token), User: user, ActiveSalonID: salonID}, len(token) > 0, nil
}

func (s *FileStore) Clear() error {
	for _, name := range []string{tokenFile, userFile, salonFile} {
		if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}
