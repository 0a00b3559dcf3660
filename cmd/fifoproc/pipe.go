package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/webbmaffian/go-fifo/channel"
	"go.uber.org/zap"
)

func newPipeCmd(a *app) *cobra.Command {
	var readSize int

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Copy stdin to stdout through a bounded channel",
		Long: "Copies stdin to stdout through a bounded channel. Reads block until\n" +
			"--read-size bytes are buffered or the writer has finished.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPipe(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), readSize)
		},
	}

	cmd.Flags().IntVar(&readSize, "read-size", 0, "bytes per read call (default: largest accepted)")

	return cmd
}

func (a *app) runPipe(ctx context.Context, in io.Reader, out io.Writer, readSize int) (err error) {
	ch, err := a.newChannel("pipe")

	if err != nil {
		return
	}

	defer ch.Destroy()

	stop := a.observe(ctx, ch)
	defer stop()

	chunk := a.chunkSize()

	if readSize <= 0 {
		readSize = chunk
	}

	if readSize > chunk {
		return fmt.Errorf("read size %d exceeds the channel limit of %d bytes", readSize, chunk)
	}

	errc := make(chan error, 1)

	go func() {
		errc <- produce(ctx, ch, in, chunk)
	}()

	err = consume(ctx, ch, out, readSize)

	// Stdin reads cannot be interrupted; do not wait for them on shutdown.
	var perr error

	select {
	case perr = <-errc:
	case <-ctx.Done():
	}

	if err = errors.Join(err, perr); err != nil {
		a.log.Warn("pipe finished with error", zap.Error(err))
	}

	return
}

func produce(ctx context.Context, ch *channel.Channel, in io.Reader, chunk int) (err error) {
	h, err := ch.Open(ctx, channel.Producer)

	if err != nil {
		return
	}

	defer h.Close()

	buf := make([]byte, chunk)

	for {
		n, rerr := in.Read(buf)

		if n > 0 {
			if _, err = h.WriteContext(ctx, buf[:n]); err != nil {
				return
			}
		}

		if rerr == io.EOF {
			return nil
		}

		if rerr != nil {
			return rerr
		}
	}
}

func consume(ctx context.Context, ch *channel.Channel, out io.Writer, readSize int) (err error) {
	h, err := ch.Open(ctx, channel.Consumer)

	if err != nil {
		return
	}

	defer h.Close()

	buf := make([]byte, readSize)

	for {
		n, rerr := h.ReadContext(ctx, buf)

		if rerr == io.EOF {
			return nil
		}

		if rerr != nil {
			return rerr
		}

		if _, err = out.Write(buf[:n]); err != nil {
			return
		}
	}
}
