package gpu

import (
	"bytes"
	"log"
	"reflect"
	"strings"
	"testing"
)

func TestReleaserReleasesInReverseOrder(t *testing.T) {
	var released []string
	record := func(name string) func() {
		return func() { released = append(released, name) }
	}

	var r Releaser
	r.Push("window", record("window"))
	r.Push("instance", record("instance"))
	r.Push("surface", record("surface"))
	r.Push("device", record("device"))

	want := []string{"device", "surface", "instance", "window"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	r.ReleaseAll()

	if !reflect.DeepEqual(released, want) {
		t.Errorf("released %v, want %v", released, want)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after ReleaseAll, want 0", r.Len())
	}
}

func TestReleaserReleaseAllIsIdempotent(t *testing.T) {
	count := 0

	var r Releaser
	r.Push("instance", func() { count++ })

	r.ReleaseAll()
	r.ReleaseAll()

	if count != 1 {
		t.Errorf("release ran %d times, want 1", count)
	}
}

func TestReleaserIgnoresNilRelease(t *testing.T) {
	var r Releaser
	r.Push("nothing", nil)

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	r.ReleaseAll()
}

func TestReleaserPartialInitialization(t *testing.T) {
	var released []string

	var r Releaser
	r.Push("window", func() { released = append(released, "window") })
	r.Push("instance", func() { released = append(released, "instance") })
	// Adapter request failed here; nothing further was pushed.
	r.ReleaseAll()

	want := []string{"instance", "window"}
	if !reflect.DeepEqual(released, want) {
		t.Errorf("released %v, want %v", released, want)
	}
}

func TestReleaserTrace(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.New(&buf, "", 0))
	defer SetLogger(nil)

	r := Releaser{Trace: true}
	r.Push("instance", func() {})
	r.Push("device", func() {})
	r.ReleaseAll()

	want := "release device\nrelease instance\n"
	if got := buf.String(); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}

	buf.Reset()
	r = Releaser{}
	r.Push("window", func() {})
	r.ReleaseAll()
	if strings.Contains(buf.String(), "window") {
		t.Errorf("untraced releaser logged %q", buf.String())
	}
}
