package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/db"

	"github.com/pegwheel/pegwheel/pkg/log"
)

const DefaultPollInterval = 500 * time.Millisecond

// FirebaseStore is a DocumentStore backed by the Firebase Realtime
// Database. The admin SDK offers no streaming listener, so Subscribe
// polls the path on a fixed interval and fans out value changes.
type FirebaseStore struct {
	client       *db.Client
	pollInterval time.Duration
}

type NewFirebaseStoreOptions struct {
	App          *firebase.App
	DatabaseURL  string
	PollInterval time.Duration
}

// NewFirebaseStore creates a new FirebaseStore.
func NewFirebaseStore(ctx context.Context, opts NewFirebaseStoreOptions) (*FirebaseStore, error) {
	client, err := opts.App.DatabaseWithURL(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("error getting Database client: %v", err)
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &FirebaseStore{
		client:       client,
		pollInterval: pollInterval,
	}, nil
}

func (s *FirebaseStore) Create(ctx context.Context, path string) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error allocating key under %s: %v", path, err)
	}
	return ref.Key, nil
}

func (s *FirebaseStore) Read(ctx context.Context, path string, v interface{}) error {
	var raw json.RawMessage
	if err := s.client.NewRef(path).Get(ctx, &raw); err != nil {
		return fmt.Errorf("error reading %s: %v", path, err)
	}
	if isAbsent(raw) {
		return &ErrNotFound{Path: path}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("error unmarshaling %s: %v", path, err)
	}
	return nil
}

func (s *FirebaseStore) Write(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("error writing %s: %v", path, err)
	}
	return nil
}

func (s *FirebaseStore) Subscribe(ctx context.Context, path string, onValue func(json.RawMessage), onError func(error)) (func(), error) {
	// ctx scopes only the initial read. The polling loop runs on its
	// own context so a short-lived caller context (an HTTP request,
	// typically) cannot silently end the subscription; only the
	// returned cancel function does.
	var last json.RawMessage
	if err := s.client.NewRef(path).Get(ctx, &last); err != nil {
		return nil, fmt.Errorf("error reading %s: %v", path, err)
	}
	if !isAbsent(last) {
		onValue(last)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				var raw json.RawMessage
				if err := s.client.NewRef(path).Get(pollCtx, &raw); err != nil {
					if pollCtx.Err() != nil {
						return
					}
					log.Warn("Poll of %s failed: %v", path, err)
					onError(err)
					continue
				}
				if isAbsent(raw) || bytes.Equal(raw, last) {
					continue
				}
				last = raw
				onValue(raw)
			}
		}
	}()

	return cancel, nil
}

// ServerTimestamp returns the Realtime Database server-timestamp
// sentinel, resolved to epoch millis at write time.
func (s *FirebaseStore) ServerTimestamp() interface{} {
	return map[string]interface{}{".sv": "timestamp"}
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
