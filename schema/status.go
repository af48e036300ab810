package schema

import "fmt"

// LinkErrorKind classifies failures recorded in the connection status.
type LinkErrorKind int

const (
	// ConnectFailure means the transport could not be established.
	ConnectFailure LinkErrorKind = iota + 1
	// SendFailure means writing a frame failed after connecting.
	SendFailure
	// ReceiveFailure means reading a frame failed after connecting.
	ReceiveFailure
	// SendQueueFailure means the UI could not hand a message to the outbound queue.
	SendQueueFailure
)

func (k LinkErrorKind) String() string {
	switch k {
	case ConnectFailure:
		return "connect"
	case SendFailure:
		return "send"
	case ReceiveFailure:
		return "receive"
	case SendQueueFailure:
		return "send-queue"
	default:
		return "unknown"
	}
}

// LinkError pairs a failure kind with its cause. Error renders the status line.
type LinkError struct {
	Kind LinkErrorKind
	Err  error
}

func (e *LinkError) Error() string {
	switch e.Kind {
	case ConnectFailure:
		return fmt.Sprintf("Connection failed: %v", e.Err)
	case ReceiveFailure:
		return fmt.Sprintf("Receive error: %v", e.Err)
	default:
		return fmt.Sprintf("Send error: %v", e.Err)
	}
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// StatusConnecting is shown while the initial dial is in flight.
func StatusConnecting(target string) string {
	return fmt.Sprintf("Connecting to %s...", target)
}

// StatusConnected is shown once the dial succeeds.
func StatusConnected(target string) string {
	return fmt.Sprintf("Connected to %s", target)
}
