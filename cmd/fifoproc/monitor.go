package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/webbmaffian/go-fifo/channel"
)

func startMonitor(ctx context.Context, chans ...*channel.Channel) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(200 * time.Millisecond)
	writer := uilive.New()
	writer.Out = os.Stderr

	lines := make([]io.Writer, len(chans))

	for i := range chans {
		lines[i] = writer.Newline()
	}

	render := func() {
		for i, ch := range chans {
			fmt.Fprintln(lines[i], formatStats(ch.Stats()))
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)

	// start listening for updates and render
	writer.Start()

	go func() {
		defer wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				render()
				return
			case <-ticker.C:
				render()
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
		writer.Stop()
	}
}

func formatStats(st channel.Stats) string {
	return fmt.Sprintf("%-6s %-9s stored %4d/%-4d producers %d (%d waiting) consumers %d (%d waiting) in %d out %d",
		st.Name, st.State, st.Stored, st.Capacity,
		st.Producers, st.ProducersWaiting,
		st.Consumers, st.ConsumersWaiting,
		st.BytesWritten, st.BytesRead,
	)
}
