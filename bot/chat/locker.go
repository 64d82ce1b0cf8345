package chat

import "sync"

// sessionLocker serializes message processing per session while letting
// distinct sessions proceed in parallel.
type sessionLocker struct {
	mutex    sync.Mutex
	sessions map[string]*sync.Mutex
}

func newSessionLocker() *sessionLocker {
	return &sessionLocker{sessions: make(map[string]*sync.Mutex)}
}

func (l *sessionLocker) Lock(key string) {
	l.mutex.Lock()

	mutex, exists := l.sessions[key]
	if !exists {
		mutex = &sync.Mutex{}
		l.sessions[key] = mutex
	}

	l.mutex.Unlock()

	mutex.Lock()
}

func (l *sessionLocker) Unlock(key string) {
	l.mutex.Lock()

	mutex, exists := l.sessions[key]
	if !exists {
		l.mutex.Unlock()
		return
	}
	l.mutex.Unlock()

	mutex.Unlock()
}
