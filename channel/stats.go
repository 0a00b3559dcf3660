package channel

// Stats is a consistent snapshot of a channel.
type Stats struct {
	Name             string
	State            State
	Capacity         int
	MaxRecord        int
	Stored           int
	Producers        int
	Consumers        int
	ProducersWaiting int
	ConsumersWaiting int
	BytesWritten     uint64
	BytesRead        uint64
	Writes           uint64
	Reads            uint64
}

func (s Stats) Free() int {
	return s.Capacity - s.Stored
}

func (ch *Channel) Stats() Stats {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	return Stats{
		Name:             ch.name,
		State:            ch.state,
		Capacity:         ch.capacity,
		MaxRecord:        ch.maxRecord,
		Stored:           ch.len(),
		Producers:        ch.open[Producer],
		Consumers:        ch.open[Consumer],
		ProducersWaiting: ch.waiting[Producer].len(),
		ConsumersWaiting: ch.waiting[Consumer].len(),
		BytesWritten:     ch.bytesWritten,
		BytesRead:        ch.bytesRead,
		Writes:           ch.writes,
		Reads:            ch.reads,
	}
}
