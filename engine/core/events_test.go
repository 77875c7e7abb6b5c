package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsRequireInitialize(t *testing.T) {
	EventShutdown()
	assert.False(t, EventRegister(EVENT_CODE_RESIZED, nil, func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true }))
	assert.False(t, EventFire(EVENT_CODE_RESIZED, nil, EventContext{}))
}

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	require.True(t, EventInitialize())
	defer EventShutdown()
	assert.False(t, EventInitialize(), "already running")

	first, second := new(int), new(int)
	var seen []*int
	var width uint32
	handler := func(handled bool) FnOnEvent {
		return func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
			seen = append(seen, listener.(*int))
			width = data.Data.U32[0]
			return handled
		}
	}
	require.True(t, EventRegister(EVENT_CODE_RESIZED, first, handler(true)))
	require.True(t, EventRegister(EVENT_CODE_RESIZED, second, handler(false)))
	assert.False(t, EventRegister(EVENT_CODE_RESIZED, first, handler(false)), "duplicate listener")

	var ctx EventContext
	ctx.Data.U32[0] = 640
	assert.True(t, EventFire(EVENT_CODE_RESIZED, nil, ctx))
	assert.Equal(t, []*int{first}, seen)
	assert.Equal(t, uint32(640), width)

	seen = nil
	require.True(t, EventUnregister(EVENT_CODE_RESIZED, first))
	assert.False(t, EventUnregister(EVENT_CODE_RESIZED, first))
	assert.False(t, EventFire(EVENT_CODE_RESIZED, nil, ctx), "remaining listener does not handle it")
	assert.Equal(t, []*int{second}, seen)

	assert.False(t, EventFire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}), "nobody listens")
}

func TestEventRegisterRejectsBadCodes(t *testing.T) {
	require.True(t, EventInitialize())
	defer EventShutdown()
	noop := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }
	assert.False(t, EventRegister(-1, nil, noop))
	assert.False(t, EventRegister(MAX_MESSAGE_CODES, nil, noop))
	assert.False(t, EventRegister(EVENT_CODE_RESIZED, nil, nil))
}
