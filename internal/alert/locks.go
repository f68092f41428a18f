package alert

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLocks сериализует операции по одному идентификатору.
// Разные идентификаторы могут попасть в одну полосу, это только снижает параллелизм.
type stripedLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLocks) lock(identity string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
