package usecase

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyLockExclusive(t *testing.T) {
	req := require.New(t)
	kl := newKeyLock()

	var inside, maxInside int32
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("0xabc/1")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	req.Equal(int32(1), maxInside)
	req.Empty(kl.locks)
}

func TestKeyLockIndependentKeys(t *testing.T) {
	kl := newKeyLock()
	unlock := kl.Lock("0xabc/1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		kl.Lock("0xabc/2")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("distinct key blocked")
	}
}
