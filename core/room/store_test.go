package room

import (
	"context"
	"sync"

	"ListenTogether/model"
)

// memStore 测试用存储，记录写入次数
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	sets     int
	deletes  int
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*model.Session)}
}

func (s *memStore) Get(_ context.Context, id string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id].Clone()
}

func (s *memStore) Set(_ context.Context, id string, session *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.sessions[id] = session.Clone()
}

func (s *memStore) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *memStore) ListAll(_ context.Context) []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	return out
}

func (s *memStore) put(session *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
}
