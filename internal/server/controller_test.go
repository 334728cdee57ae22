package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chrissnell/snowprofile/pkg/config"
)

func TestStartControllerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	c, err := NewController(ctx, &wg, config.ServerData{ListenAddr: "127.0.0.1"}, config.CAAMLData{}, nil)
	require.NoError(t, err)
	c.Server.Addr = "127.0.0.1:0"

	require.NoError(t, c.StartController())
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
