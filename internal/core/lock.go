package core

import "golang.org/x/sync/singleflight"

// classLock is the name-striped mutex described as ClassLoadingLock: it
// serializes concurrent loads of the same class name through a loader
// without serializing loads of distinct names.
//
// singleflight.Group already provides exactly the required properties: a
// call for a key that is already in flight waits for, and shares the result
// of, the in-flight call instead of running again; the table entry for a key
// is removed as soon as the in-flight call completes, so it never
// accumulates beyond in-flight loads; and distinct keys never block each
// other, since each gets its own wait group entry.
type classLock struct {
	g singleflight.Group
}

// withLock runs fn while holding the stripe for name and returns its result.
// Concurrent calls for the same name observe the single completer's result;
// calls for other names proceed independently.
func (l *classLock) withLock(name string, fn func() (*LoadedClass, error)) (*LoadedClass, error) {
	v, err, _ := l.g.Do(name, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*LoadedClass), nil
}
