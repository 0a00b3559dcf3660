package channel_test

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/webbmaffian/go-fifo/channel"
)

func Example() {
	ch, err := channel.New(10, 10)

	if err != nil {
		log.Println(err)
		return
	}

	defer ch.Destroy()

	done := make(chan struct{})

	go runServer(ch, done)
	runClient(ch)

	<-done

	// Output:
	// server: 000001
	// server: 000002
	// server: 000003
	// server: closing
}

func runServer(ch *channel.Channel, done chan<- struct{}) {
	defer close(done)

	h, err := ch.Open(context.Background(), channel.Consumer)

	if err != nil {
		log.Println(err)
		return
	}

	defer h.Close()

	msg := make([]byte, 6)

	for {
		if _, err := h.Read(msg); err == io.EOF {
			break
		}

		fmt.Println("server:", string(msg))
	}

	fmt.Println("server: closing")
}

func runClient(ch *channel.Channel) {
	h, err := ch.Open(context.Background(), channel.Producer)

	if err != nil {
		log.Println(err)
		return
	}

	defer h.Close()

	for i := 1; i <= 3; i++ {
		if _, err := fmt.Fprintf(h, "%06d", i); err != nil {
			log.Println(err)
			return
		}
	}
}
