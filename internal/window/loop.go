package window

// EventSource is polled once per iteration of Loop.
type EventSource interface {
	PollEvents()
	ShouldClose() bool
}

// Loop runs the single-threaded main loop: poll events, then run one frame,
// until the source asks to close or a frame fails.
func Loop(src EventSource, frame func() error) error {
	for {
		src.PollEvents()
		if src.ShouldClose() {
			return nil
		}

		if frame == nil {
			continue
		}
		if err := frame(); err != nil {
			return err
		}
	}
}
