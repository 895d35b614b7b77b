package connector

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RingBufferConfig(t *testing.T) {
	assert := assert.New(t)

	cfg := NewRingBufferConfig("test")
	cfg.Capacity = 0
	cfg.MaxSpins = -1
	cfg.InitialBackoff = 0
	cfg.MaxBackoff = -time.Second

	buf, err := NewRingBuffer[int](cfg)
	require.NoError(t, err)

	assert.Equal(uint32(DefaultRingBufferCapacity), cfg.Capacity)
	assert.Equal(DefaultRingBufferMaxSpins, cfg.MaxSpins)
	assert.Equal(DefaultRingBufferInitialBackoff, cfg.InitialBackoff)
	assert.Equal(DefaultRingBufferInitialBackoff, cfg.MaxBackoff)

	assert.Equal(uint32(DefaultRingBufferCapacity), buf.Capacity())
}

func Test_RingBuffer_connector(t *testing.T) {
	assert := assert.New(t)

	const items = 10_000

	cfg := NewRingBufferConfig("test")
	cfg.Capacity = 64

	buf, err := NewRingBuffer[int](cfg)
	require.NoError(t, err)

	var conn Connector[int] = buf

	wg := &sync.WaitGroup{}
	wg.Add(1)

	received := []int{}
	go func() {
		defer wg.Done()

		for {
			item, err := conn.Read(t.Context())
			if err != nil {
				assert.ErrorIs(err, ErrClosed)
				return
			}

			received = append(received, item)
		}
	}()

	for item := range items {
		assert.NoError(conn.Write(t.Context(), item))
	}

	conn.Close()
	wg.Wait()

	assert.Len(received, items)
	for idx, item := range received {
		if !assert.Equal(idx, item) {
			break
		}
	}
}
