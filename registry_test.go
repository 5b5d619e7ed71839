package hellod3d

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type handleOwner struct {
	name string
	data [64]byte
}

func TestRegistry_ShouldResolveLiveOwners(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry[uintptr, handleOwner]()
	owner := &handleOwner{name: "main"}
	reg.Register(0x10, owner)

	got, ok := reg.Lookup(0x10)
	assert.True(ok)
	assert.Same(owner, got)

	_, ok = reg.Lookup(0x20)
	assert.False(ok)

	runtime.KeepAlive(owner)
}

func TestRegistry_UnregisterShouldReportRemainingEntries(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry[uintptr, handleOwner]()
	first, second := &handleOwner{name: "first"}, &handleOwner{name: "second"}
	reg.Register(1, first)
	reg.Register(2, second)
	assert.Equal(2, reg.Len())

	assert.Equal(1, reg.Unregister(1))
	_, ok := reg.Lookup(1)
	assert.False(ok)
	assert.Equal(0, reg.Unregister(2))
	assert.Equal(0, reg.Unregister(2))

	runtime.KeepAlive(first)
	runtime.KeepAlive(second)
}

func TestRegistry_ShouldNotKeepOwnersAlive(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry[uintptr, handleOwner]()
	func() {
		reg.Register(0x30, &handleOwner{name: "transient"})
	}()
	runtime.GC()
	runtime.GC()

	_, ok := reg.Lookup(0x30)
	assert.False(ok)
	assert.Equal(0, reg.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry[int, handleOwner]()
	owners := make([]*handleOwner, 32)
	for i := range owners {
		owners[i] = &handleOwner{}
	}

	var wg sync.WaitGroup
	for i := range owners {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Register(i, owners[i])
			if v, ok := reg.Lookup(i); !ok || v != owners[i] {
				t.Errorf("lookup %d: got %v, %v", i, v, ok)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(owners), reg.Len())
	runtime.KeepAlive(owners)
}
