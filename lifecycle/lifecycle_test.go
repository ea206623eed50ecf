package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerInitClose(t *testing.T) {
	check := assert.New(t)
	shared := &MemoryResource{}

	first := NewManager(shared)
	result, err := first.Init(Flags{Notifications: true})
	check.NoError(err)
	check.Equal(FirstInit, result)

	second := NewManager(shared)
	result, err = second.Init(Flags{})
	check.NoError(err)
	check.Equal(AlreadyInit, result)
	check.Equal(2, shared.Participants())

	// a system close with another participant active is deferred
	closed, err := first.Close(true)
	check.NoError(err)
	check.Equal(CloseDeferred, closed)
	check.Equal(1, shared.Participants())

	torndown := false
	shared.OnTeardown = func() { torndown = true }
	closed, err = second.Close(false)
	check.NoError(err)
	check.Equal(CloseSuccess, closed)
	check.Equal(0, shared.Participants())
	// the earlier system close takes effect once the last
	// participant leaves
	check.True(torndown)
}

func TestManagerMisuse(t *testing.T) {
	check := assert.New(t)
	shared := &MemoryResource{}
	m := NewManager(shared)

	_, err := m.Close(false)
	check.Error(err)

	_, err = m.Init(Flags{})
	check.NoError(err)
	_, err = m.Init(Flags{})
	check.Error(err)

	_, err = m.Close(false)
	check.NoError(err)
	_, err = m.Close(false)
	check.Error(err)
}

func TestManagerRecoveryUID(t *testing.T) {
	check := assert.New(t)

	m := NewManager(&MemoryResource{})
	check.Error(m.SetRecoveryUID(0), "requires init")

	_, err := m.Init(Flags{})
	check.NoError(err)
	check.Error(m.SetRecoveryUID(0), "requires access control")
	_, ok := m.RecoveryUID()
	check.False(ok)

	m = NewManager(&MemoryResource{})
	_, err = m.Init(Flags{AccessControl: true})
	check.NoError(err)
	check.NoError(m.SetRecoveryUID(1001))
	uid, ok := m.RecoveryUID()
	check.True(ok)
	check.Equal(1001, uid)
}

func TestFileResource(t *testing.T) {
	check := assert.New(t)
	dir := t.TempDir()
	shared := &FileResource{Dir: dir}

	first, err := shared.Acquire()
	check.NoError(err)
	check.True(first)

	first, err = shared.Acquire()
	check.NoError(err)
	check.False(first)

	last, err := shared.Release(true)
	check.NoError(err)
	check.False(last)
	// the teardown request persists for the last participant
	_, serr := os.Stat(filepath.Join(dir, "teardown"))
	check.NoError(serr)

	last, err = shared.Release(false)
	check.NoError(err)
	check.True(last)

	// shared state is gone: the next participant is first again
	_, serr = os.Stat(filepath.Join(dir, "participants"))
	check.True(os.IsNotExist(serr))
	first, err = shared.Acquire()
	check.NoError(err)
	check.True(first)

	_, err = shared.Release(false)
	check.NoError(err)
}

func TestFileResourceReleaseWithoutAcquire(t *testing.T) {
	check := assert.New(t)
	shared := &FileResource{Dir: t.TempDir()}
	_, err := shared.Release(false)
	check.Error(err)
}
