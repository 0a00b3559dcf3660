package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/webbmaffian/go-fifo/channel"
	"go.uber.org/zap"
)

const recordSize = 4

type randomOptions struct {
	period    time.Duration
	maxRandom uint32
	threshold int // Percent of the capacity a consumer waits for.
	count     int // Zero means until interrupted.
	seed      int64
}

func newRandomCmd(a *app) *cobra.Command {
	opts := randomOptions{
		period:    100 * time.Millisecond,
		maxRandom: 300,
		threshold: 80,
	}

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate random numbers on a timer, split into even and odd channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.seed == 0 {
				opts.seed = time.Now().UnixNano()
			}

			return a.runRandom(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	fs := cmd.Flags()
	fs.DurationVar(&opts.period, "period", opts.period, "interval between generated numbers")
	fs.Uint32Var(&opts.maxRandom, "max-random", opts.maxRandom, "numbers are drawn from [0, max-random)")
	fs.IntVar(&opts.threshold, "threshold", opts.threshold, "percent of the capacity buffered before a consumer wakes up")
	fs.IntVar(&opts.count, "count", 0, "stop after this many numbers (0 = until interrupted)")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")

	return cmd
}

// Bytes each consumer asks for per read: the threshold share of the
// capacity, in whole records, within the channel limits.
func (a *app) batchSize(threshold int) (int, error) {
	limit := a.chunkSize() / recordSize * recordSize

	if limit < recordSize {
		return 0, fmt.Errorf("channel limits must allow at least %d bytes per call", recordSize)
	}

	if threshold < 1 || threshold > 100 {
		return 0, errors.New("threshold must be between 1 and 100")
	}

	batch := a.cfg.Channel.Capacity * threshold / 100 / recordSize * recordSize

	if batch < recordSize {
		batch = recordSize
	}

	if batch > limit {
		batch = limit
	}

	return batch, nil
}

func (a *app) runRandom(ctx context.Context, out io.Writer, opts randomOptions) (err error) {
	if opts.maxRandom < 1 {
		return errors.New("max-random must be positive")
	}

	if opts.period <= 0 {
		return errors.New("period must be positive")
	}

	batch, err := a.batchSize(opts.threshold)

	if err != nil {
		return
	}

	even, err := a.newChannel("even")

	if err != nil {
		return
	}

	defer even.Destroy()

	odd, err := a.newChannel("odd")

	if err != nil {
		return
	}

	defer odd.Destroy()

	stop := a.observe(ctx, even, odd)
	defer stop()

	var (
		wg    sync.WaitGroup
		outMu sync.Mutex
		errs  = make([]error, 2)
	)

	for i, ch := range []*channel.Channel{even, odd} {
		wg.Add(1)

		go func(i int, ch *channel.Channel) {
			defer wg.Done()
			errs[i] = printNumbers(ctx, ch, out, &outMu, batch)
		}(i, ch)
	}

	gerr := a.generate(ctx, even, odd, opts)
	wg.Wait()

	return errors.Join(gerr, errs[0], errs[1])
}

// Writes numbers into the channel matching their parity until the count is
// reached or ctx is done. Closing the producers lets the consumers drain.
func (a *app) generate(ctx context.Context, even, odd *channel.Channel, opts randomOptions) (err error) {
	evenH, err := even.Open(ctx, channel.Producer)

	if err != nil {
		return ignoreInterrupt(err)
	}

	defer evenH.Close()

	oddH, err := odd.Open(ctx, channel.Producer)

	if err != nil {
		return ignoreInterrupt(err)
	}

	defer oddH.Close()

	rng := rand.New(rand.NewSource(opts.seed))
	ticker := time.NewTicker(opts.period)
	defer ticker.Stop()

	var rec [recordSize]byte

	for i := 0; opts.count == 0 || i < opts.count; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		n := uint32(rng.Int63n(int64(opts.maxRandom)))
		binary.BigEndian.PutUint32(rec[:], n)

		h := evenH

		if n%2 == 1 {
			h = oddH
		}

		a.log.Debug("generated number", zap.Uint32("number", n), zap.String("channel", h.Channel().Name()))

		if _, err = h.WriteContext(ctx, rec[:]); err != nil {
			return ignoreInterrupt(err)
		}
	}

	return
}

// Once open, consumers are only stopped by end of stream, so that whatever
// was generated before shutdown is still printed.
func printNumbers(ctx context.Context, ch *channel.Channel, out io.Writer, mu *sync.Mutex, batch int) (err error) {
	h, err := ch.Open(ctx, channel.Consumer)

	if err != nil {
		return ignoreInterrupt(err)
	}

	defer h.Close()

	buf := make([]byte, batch)

	for {
		n, rerr := h.Read(buf)

		if rerr == io.EOF {
			return nil
		}

		if rerr != nil {
			return rerr
		}

		mu.Lock()

		for off := 0; off+recordSize <= n; off += recordSize {
			fmt.Fprintf(out, "%s: %d\n", ch.Name(), binary.BigEndian.Uint32(buf[off:]))
		}

		mu.Unlock()
	}
}

// Shutdown by signal is not a failure.
func ignoreInterrupt(err error) error {
	if errors.Is(err, channel.ErrInterrupted) {
		return nil
	}

	return err
}
