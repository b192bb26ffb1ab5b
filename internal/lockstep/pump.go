package lockstep

// Drain hands every message already waiting in inbox to the peer without
// blocking. It stops at the first protocol failure.
func Drain(p *Peer, inbox <-chan Message) error {
	return DrainFunc(inbox, p.Handle)
}

// DrainFunc is Drain with a custom handler, for callers that route some
// messages elsewhere before the peer sees them.
func DrainFunc(inbox <-chan Message, handle func(Message) error) error {
	for {
		select {
		case msg, ok := <-inbox:
			if !ok {
				return nil
			}
			if err := handle(msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
