package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/streamcart/signal-service/internal/domain"
)

// FileStore keeps each record as one JSON file under
//
//	<dir>/<room>/<kind>/<peer>/<nanotimestamp>-<rand>.json
//
// Record identity carries a nanosecond timestamp so "latest" is
// deterministic even for writes within the same second; the record body
// still reports created_at in whole seconds.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mailbox dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) keyDir(room string, kind domain.SignalKind, peerTag string) (string, error) {
	room = domain.SanitizeRoom(room)
	if room == "" {
		return "", domain.ErrRoomRequired
	}
	peerTag = domain.SanitizeRoom(peerTag)
	if peerTag == "" {
		peerTag = domain.DefaultPeerTag
	}
	return filepath.Join(s.dir, room, string(kind), peerTag), nil
}

func (s *FileStore) Put(ctx context.Context, room string, kind domain.SignalKind, peerTag string, payload json.RawMessage) error {
	if len(payload) == 0 {
		return domain.ErrSignalRequired
	}
	dir, err := s.keyDir(room, kind, peerTag)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mailbox put: %w", err)
	}

	now := time.Now()
	rec := domain.SignalRecord{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now.Unix(),
		PeerTag:   domain.SanitizeRoom(peerTag),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("mailbox put: %w", err)
	}

	// Nanoseconds order the records; the random suffix keeps two writers in
	// the same nanosecond from colliding on a name.
	name := fmt.Sprintf("%020d-%s.json", now.UnixNano(), uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("mailbox put: %w", err)
	}
	return nil
}

func (s *FileStore) GetLatest(ctx context.Context, room string, kind domain.SignalKind, peerTag string) (json.RawMessage, error) {
	dir, err := s.keyDir(room, kind, peerTag)
	if err != nil {
		return nil, err
	}
	names, err := listRecords(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	latest := names[len(names)-1]
	rec, err := readRecord(filepath.Join(dir, latest))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// consumed by a concurrent clear
			return nil, nil
		}
		return nil, err
	}

	// Keep only the record just returned; a repeated read with no new Put
	// sees the same payload.
	for _, name := range names[:len(names)-1] {
		_ = os.Remove(filepath.Join(dir, name))
	}

	return rec.Payload, nil
}

func (s *FileStore) DrainAll(ctx context.Context, room string, kind domain.SignalKind, peerTag string) ([]json.RawMessage, error) {
	dir, err := s.keyDir(room, kind, peerTag)
	if err != nil {
		return nil, err
	}
	names, err := listRecords(dir)
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)

		// Rename is the claim: exactly one concurrent reader wins a record.
		claimed := path + ".claim-" + uuid.NewString()[:8]
		if err := os.Rename(path, claimed); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("mailbox drain: %w", err)
		}

		rec, err := readRecord(claimed)
		_ = os.Remove(claimed)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Payload)
	}

	return out, nil
}

func (s *FileStore) ClearRoom(ctx context.Context, room string) error {
	room = domain.SanitizeRoom(room)
	if room == "" {
		return domain.ErrRoomRequired
	}
	if err := os.RemoveAll(filepath.Join(s.dir, room)); err != nil {
		return fmt.Errorf("mailbox clear: %w", err)
	}
	return nil
}

// listRecords returns the record file names under dir, oldest first.
// A missing key directory is an empty mailbox, not an error.
func listRecords(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("mailbox list: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func readRecord(path string) (*domain.SignalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec domain.SignalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("mailbox decode %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}
