// SPDX-License-Identifier: EPL-2.0

package library

import "sync"

// assetLocks serializes changes to the same asset. Entries are dropped once
// nobody holds or waits for them.
type assetLocks struct {
	mtx sync.Mutex
	m   map[string]*assetLock
}

type assetLock struct {
	sync.Mutex
	refs int
}

func (l *assetLocks) lock(id string) (unlock func()) {
	l.mtx.Lock()
	al, ok := l.m[id]
	if !ok {
		al = &assetLock{}
		l.m[id] = al
	}
	al.refs++
	l.mtx.Unlock()

	al.Lock()

	return func() {
		al.Unlock()

		l.mtx.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.m, id)
		}
		l.mtx.Unlock()
	}
}
