package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/logging"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists tokens as a JSON object in a single file so they survive between CLI runs.
// Every read goes to disk, so writes from another process are picked up by the next Get. Version
// also moves when the file changes underneath, judged by its modification time and size.
type FileStore struct {
	path    string
	mu      sync.Mutex
	version uint64
	stamp   fileStamp
}

type fileStamp struct {
	modNano int64
	size    int64
	exists  bool
}

func (s *FileStore) currentStamp() fileStamp {
	info, err := os.Stat(s.path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modNano: info.ModTime().UnixNano(), size: info.Size(), exists: true}
}

func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}
	s.stamp = s.currentStamp()
	return s
}

// DefaultFilePath is the token file under the user's config directory.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "omechoo", "sessions.json")
}

func (s *FileStore) load() (map[string]string, error) {
	tokens := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tokens, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	return tokens, nil
}

// write replaces the file through a rename so readers never see a partial document.
func (s *FileStore) write(tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) update(fn func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	fn(tokens)
	if err := s.write(tokens); err != nil {
		logging.Log.Errorf("SESSION: failed to write %s: %v", s.path, err)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	s.version++
	s.stamp = s.currentStamp()
	return nil
}

func (s *FileStore) Save(roomID, token string) error {
	return s.update(func(tokens map[string]string) {
		tokens[Key(roomID)] = token
	})
}

func (s *FileStore) Get(roomID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		logging.Log.Warnf("SESSION: failed to read %s: %v", s.path, err)
		return "", false
	}
	token, ok := tokens[Key(roomID)]
	return token, ok
}

func (s *FileStore) Remove(roomID string) error {
	return s.update(func(tokens map[string]string) {
		delete(tokens, Key(roomID))
	})
}

func (s *FileStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stamp := s.currentStamp(); stamp != s.stamp {
		s.stamp = stamp
		s.version++
	}
	return s.version
}

// Rooms lists the room ids that have a stored token.
func (s *FileStore) Rooms() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return nil, err
	}
	rooms := make([]string, 0, len(tokens))
	for key := range tokens {
		if len(key) > len(keyPrefix) && key[:len(keyPrefix)] == keyPrefix {
			rooms = append(rooms, key[len(keyPrefix):])
		}
	}
	return rooms, nil
}
