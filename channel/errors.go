package channel

type channelError string

var _ error = channelError("")

func (err channelError) Error() string {
	return string(err)
}

const (
	ErrInterrupted  = channelError("wait interrupted")
	ErrBrokenPipe   = channelError("broken pipe: no consumers left")
	ErrSizeExceeded = channelError("size exceeds channel limits")
	ErrDestroyed    = channelError("channel is destroyed")
	ErrHandleClosed = channelError("handle is closed")
	ErrWrongRole    = channelError("operation not permitted for handle role")
	ErrInvalidRole  = channelError("invalid role")
)
