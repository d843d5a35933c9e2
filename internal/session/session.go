// Package session tracks which user, if any, is currently logged in and
// pushes every change to subscribers.
package session

import (
	"sync"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

// State is one emission of the session value.
type State struct {
	LoggedIn bool       `json:"loggedIn"`
	User     *user.User `json:"user,omitempty"`
	At       time.Time  `json:"at"`
}

type Session struct {
	mu      sync.RWMutex
	current *user.User
	subs    map[uint64]chan State
	nextID  uint64
	closed  bool
	now     func() time.Time
}

func New() *Session {
	return &Session{
		subs: make(map[uint64]chan State),
		now:  time.Now,
	}
}

// SetCurrent stores a copy of u and notifies subscribers.
func (s *Session) SetCurrent(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &u
	s.publishLocked()
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.publishLocked()
}

// Current returns a copy of the logged-in user.
func (s *Session) Current() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return user.User{}, false
	}

	return *s.current, true
}

func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current != nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stateLocked()
}

// Subscribe registers a listener. The channel immediately holds the current
// state and then receives every change in emission order. When the listener
// falls behind, older undelivered states are dropped so the latest one always
// gets through. Call cancel to unsubscribe; the channel is closed afterwards.
func (s *Session) Subscribe(buffer int) (<-chan State, func()) {
	if buffer < 1 {
		buffer = 1
	}

	ch := make(chan State, buffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.stateLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}

	return ch, cancel
}

func (s *Session) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.subs)
}

// Close ends every subscription. Later subscriptions get a closed channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) stateLocked() State {
	st := State{LoggedIn: s.current != nil, At: s.now().UTC()}
	if s.current != nil {
		u := *s.current
		st.User = &u
	}

	return st
}

// publishLocked never blocks: a full channel loses its oldest entry.
func (s *Session) publishLocked() {
	st := s.stateLocked()

	for _, ch := range s.subs {
		for {
			select {
			case ch <- st:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}
