package window

import (
	"testing"

	"github.com/cockroachdb/errors"
)

type fakeSource struct {
	polls      int
	closeAfter int
}

func (s *fakeSource) PollEvents() {
	s.polls++
}

func (s *fakeSource) ShouldClose() bool {
	return s.polls > s.closeAfter
}

func TestLoopRunsUntilClose(t *testing.T) {
	src := &fakeSource{closeAfter: 3}
	frames := 0

	err := Loop(src, func() error {
		frames++
		return nil
	})
	if err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	if frames != 3 {
		t.Errorf("ran %d frames, want 3", frames)
	}
	if src.polls != 4 {
		t.Errorf("polled %d times, want 4", src.polls)
	}
}

func TestLoopClosedBeforeFirstFrame(t *testing.T) {
	src := &fakeSource{closeAfter: 0}

	err := Loop(src, func() error {
		t.Error("frame ran after close was requested")
		return nil
	})
	if err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
}

func TestLoopStopsOnFrameError(t *testing.T) {
	src := &fakeSource{closeAfter: 100}
	errPresent := errors.New("present failed")
	frames := 0

	err := Loop(src, func() error {
		frames++
		if frames == 2 {
			return errPresent
		}
		return nil
	})
	if !errors.Is(err, errPresent) {
		t.Errorf("Loop() error = %v, want %v", err, errPresent)
	}
	if frames != 2 {
		t.Errorf("ran %d frames, want 2", frames)
	}
}

func TestLoopWithoutFrame(t *testing.T) {
	src := &fakeSource{closeAfter: 5}

	if err := Loop(src, nil); err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	if src.polls != 6 {
		t.Errorf("polled %d times, want 6", src.polls)
	}
}

func TestOpenRejectsBadSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{name: "zero width", width: 0, height: 600},
		{name: "negative height", width: 800, height: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Open(Config{Title: "test", Width: tt.width, Height: tt.height})
			if err == nil {
				w.Destroy()
				t.Fatal("Open() returned no error")
			}
		})
	}
}
