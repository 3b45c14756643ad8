package session

import (
	"context"
	"sync"
	"time"

	"app/internal/domain/model"
)

// REDIS_ADDRが無いとき用。プロセス内だけで持つ。
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

type memorySession struct {
	cart      map[string]int64
	buyNow    *model.BuyNowSelection
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

// 期限切れなら捨てる。createなら作る。
func (s *MemoryStore) session(sessionID string, create bool) *memorySession {
	now := s.now()
	sess, ok := s.sessions[sessionID]
	if ok && now.After(sess.expiresAt) {
		delete(s.sessions, sessionID)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		sess = &memorySession{cart: make(map[string]int64)}
		s.sessions[sessionID] = sess
	}
	if create {
		sess.expiresAt = now.Add(s.ttl)
	}
	return sess
}

func (s *MemoryStore) GuestCart(_ context.Context, sessionID string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64)
	if sess := s.session(sessionID, false); sess != nil {
		for k, v := range sess.cart {
			out[k] = v
		}
	}
	return out, nil
}

func (s *MemoryStore) IncrGuestItem(_ context.Context, sessionID string, productID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID, true)
	sess.cart[productID] = capQuantity(sess.cart[productID], delta)
	return sess.cart[productID], nil
}

func (s *MemoryStore) SetGuestItem(_ context.Context, sessionID string, productID string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(sessionID, true).cart[productID] = qty
	return nil
}

func (s *MemoryStore) RemoveGuestItem(_ context.Context, sessionID string, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.session(sessionID, false); sess != nil {
		delete(sess.cart, productID)
		sess.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

func (s *MemoryStore) ClearGuestCart(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.session(sessionID, false); sess != nil {
		sess.cart = make(map[string]int64)
	}
	return nil
}

func (s *MemoryStore) SetBuyNow(_ context.Context, sessionID string, sel model.BuyNowSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(sessionID, true).buyNow = &sel
	return nil
}

func (s *MemoryStore) TakeBuyNow(_ context.Context, sessionID string) (model.BuyNowSelection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID, false)
	if sess == nil || sess.buyNow == nil {
		return model.BuyNowSelection{}, false, nil
	}
	sel := *sess.buyNow
	sess.buyNow = nil
	return sel, true, nil
}

// 加算結果をMaxLineQuantityで止める（あふれて負にしない）
func capQuantity(cur int64, delta int64) int64 {
	if delta > 0 && cur > model.MaxLineQuantity-delta {
		return model.MaxLineQuantity
	}
	return cur + delta
}
