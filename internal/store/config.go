package store

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"creatorwatch/internal/domain"
)

const configSchemaVersion = "1.0"

// configData is the top-level JSON structure of the config file.
type configData struct {
	Version   string           `json:"version"`
	UpdatedAt time.Time        `json:"updated_at"`
	Creators  []domain.Creator `json:"creators"`

	// Credentials may also come from the environment; values here are the
	// persisted fallback.
	YouTubeAPIKey      string `json:"youtube_api_key,omitempty"`
	TwitchClientID     string `json:"twitch_client_id,omitempty"`
	TwitchClientSecret string `json:"twitch_client_secret,omitempty"`
}

// ConfigStore persists the registered creators and per-provider credentials.
type ConfigStore struct {
	path string
	lock *FileLock
	mu   sync.RWMutex
	data *configData
}

// NewConfigStore opens (or creates) the config file at path.
func NewConfigStore(path string) (*ConfigStore, error) {
	s := &ConfigStore{
		path: path,
		lock: NewFileLock(path),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

func (s *ConfigStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = &configData{Version: configSchemaVersion}
			// Save immediately to catch permission errors early
			return s.save()
		}
		return &StoreError{Op: "read", Entity: "config", Err: err}
	}

	s.data = &configData{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return &StoreError{Op: "read", Entity: "config", Err: ErrCorrupt}
	}
	return nil
}

func (s *ConfigStore) save() error {
	s.data.Version = configSchemaVersion
	s.data.UpdatedAt = time.Now()

	writer, err := NewAtomicWriter(s.path)
	if err != nil {
		return &StoreError{Op: "write", Entity: "config", Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		writer.Abort()
		return &StoreError{Op: "write", Entity: "config", Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StoreError{Op: "write", Entity: "config", Err: err}
	}
	return nil
}

// Creators returns all registered creators.
func (s *ConfigStore) Creators() []domain.Creator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Creator, len(s.data.Creators))
	copy(out, s.data.Creators)
	return out
}

// Creator returns the creator with the given ID.
func (s *ConfigStore) Creator(id string) (domain.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.data.Creators {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Creator{}, &StoreError{Op: "read", Entity: "creator", Key: id, Err: ErrNotFound}
}

// SaveCreator inserts or updates a creator, keyed by ID. An empty ID is
// derived from the name, falling back to a random one for empty names.
func (s *ConfigStore) SaveCreator(creator domain.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creator.ID == "" {
		creator.ID = domain.SlugID(creator.Name)
	}
	if creator.ID == "" {
		creator.ID = uuid.NewString()
	}

	s.upsert(creator)
	return s.save()
}

// SaveCreators upserts a batch of creators in one write.
func (s *ConfigStore) SaveCreators(creators []domain.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range creators {
		if c.ID == "" {
			c.ID = domain.SlugID(c.Name)
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		s.upsert(c)
	}
	return s.save()
}

func (s *ConfigStore) upsert(creator domain.Creator) {
	for i, c := range s.data.Creators {
		if c.ID == creator.ID {
			s.data.Creators[i] = creator
			return
		}
	}
	s.data.Creators = append(s.data.Creators, creator)
}

// RemoveCreator deletes the creator with the given ID.
func (s *ConfigStore) RemoveCreator(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.data.Creators {
		if c.ID == id {
			s.data.Creators = append(s.data.Creators[:i], s.data.Creators[i+1:]...)
			return s.save()
		}
	}
	return &StoreError{Op: "delete", Entity: "creator", Key: id, Err: ErrNotFound}
}

// YouTubeAPIKey returns the persisted YouTube Data API key, empty if unset.
func (s *ConfigStore) YouTubeAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.YouTubeAPIKey
}

// SetYouTubeAPIKey persists the YouTube Data API key.
func (s *ConfigStore) SetYouTubeAPIKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.YouTubeAPIKey = key
	return s.save()
}

// TwitchCredentials returns the persisted Twitch client ID and secret.
func (s *ConfigStore) TwitchCredentials() (clientID, clientSecret string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.TwitchClientID, s.data.TwitchClientSecret
}

// SetTwitchCredentials persists the Twitch client credentials.
func (s *ConfigStore) SetTwitchCredentials(clientID, clientSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TwitchClientID = clientID
	s.data.TwitchClientSecret = clientSecret
	return s.save()
}

// Path returns the config file location.
func (s *ConfigStore) Path() string { return s.path }

// Close releases the file lock.
func (s *ConfigStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}
