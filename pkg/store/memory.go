package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore used by tests and offline
// mode. Unlike the Firebase implementation its subscriptions are true
// push: every write fans out synchronously to overlapping listeners.
// Server-timestamp placeholders resolve to wall-clock millis at write
// time, mirroring the Realtime Database.
type MemoryStore struct {
	mu     sync.RWMutex
	root   map[string]interface{}
	subs   map[int]*memorySubscription
	nextID int
	now    func() int64
}

type memorySubscription struct {
	path    string
	onValue func(json.RawMessage)
	onError func(error)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root: make(map[string]interface{}),
		subs: make(map[int]*memorySubscription),
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *MemoryStore) Create(ctx context.Context, path string) (string, error) {
	return uuid.NewString(), nil
}

func (s *MemoryStore) Read(ctx context.Context, path string, v interface{}) error {
	s.mu.RLock()
	raw, ok := s.valueAt(path)
	s.mu.RUnlock()

	if !ok {
		return &ErrNotFound{Path: path}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("error unmarshaling %s: %v", path, err)
	}
	return nil
}

func (s *MemoryStore) Write(ctx context.Context, path string, v interface{}) error {
	value, err := normalize(v, s.now())
	if err != nil {
		return fmt.Errorf("error encoding value for %s: %v", path, err)
	}

	s.mu.Lock()
	s.setAt(path, value)
	notify := s.pendingNotifications(path)
	s.mu.Unlock()

	for _, n := range notify {
		n.sub.onValue(n.value)
	}
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, path string, onValue func(json.RawMessage), onError func(error)) (func(), error) {
	sub := &memorySubscription{path: path, onValue: onValue, onError: onError}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	raw, ok := s.valueAt(path)
	s.mu.Unlock()

	if ok {
		onValue(raw)
	}

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return cancel, nil
}

func (s *MemoryStore) ServerTimestamp() interface{} {
	return map[string]interface{}{".sv": "timestamp"}
}

type notification struct {
	sub   *memorySubscription
	value json.RawMessage
}

// pendingNotifications collects the post-write values for every
// subscription whose path overlaps the written path. Caller holds the
// lock.
func (s *MemoryStore) pendingNotifications(written string) []notification {
	var out []notification
	for _, sub := range s.subs {
		if !pathsOverlap(sub.path, written) {
			continue
		}
		if raw, ok := s.valueAt(sub.path); ok {
			out = append(out, notification{sub: sub, value: raw})
		}
	}
	return out
}

func (s *MemoryStore) valueAt(path string) (json.RawMessage, bool) {
	node := nodeAt(s.root, splitPath(path))
	if node == nil {
		return nil, false
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *MemoryStore) setAt(path string, value interface{}) {
	s.root = setNode(s.root, splitPath(path), value).(map[string]interface{})
}

// setNode writes value at the segment path, creating intermediate maps
// as needed. Numeric segments index into arrays in place, mirroring the
// Realtime Database's array-as-object behavior.
func setNode(node interface{}, segments []string, value interface{}) interface{} {
	if len(segments) == 0 {
		return value
	}
	seg := segments[0]

	switch container := node.(type) {
	case map[string]interface{}:
		container[seg] = setNode(container[seg], segments[1:], value)
		return container
	case []interface{}:
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 && i < len(container) {
			container[i] = setNode(container[i], segments[1:], value)
			return container
		}
	}

	child := make(map[string]interface{})
	child[seg] = setNode(nil, segments[1:], value)
	return child
}

func nodeAt(root map[string]interface{}, segments []string) interface{} {
	var node interface{} = root
	for _, seg := range segments {
		switch container := node.(type) {
		case map[string]interface{}:
			node = container[seg]
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(container) {
				return nil
			}
			node = container[i]
		default:
			return nil
		}
	}
	return node
}

// normalize round-trips v through JSON into plain maps/slices and
// resolves server-timestamp placeholders.
func normalize(v interface{}, nowMillis int64) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return resolveTimestamps(decoded, nowMillis), nil
}

func resolveTimestamps(v interface{}, nowMillis int64) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		if _, ok := value[".sv"]; ok && len(value) == 1 {
			return nowMillis
		}
		for k, child := range value {
			value[k] = resolveTimestamps(child, nowMillis)
		}
		return value
	case []interface{}:
		for i, child := range value {
			value[i] = resolveTimestamps(child, nowMillis)
		}
		return value
	default:
		return v
	}
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func pathsOverlap(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
