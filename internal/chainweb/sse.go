package chainweb

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const maxEventSize = 8 << 20

// ErrStreamClosed is returned when the node ends an event stream.
var ErrStreamClosed = errors.New("event stream closed by node")

type event struct {
	Name string
	ID   string
	Data string
}

// readEvents parses a text/event-stream body and calls fn for every dispatched event.
func readEvents(r io.Reader, fn func(event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxEventSize)

	var (
		ev   event
		data []string
	)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(data) > 0 {
				ev.Data = strings.Join(data, "\n")
				if ev.Name == "" {
					ev.Name = "message"
				}
				if err := fn(ev); err != nil {
					return err
				}
			}
			ev, data = event{}, nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Name = value
		case "data":
			data = append(data, value)
		case "id":
			ev.ID = value
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return ErrStreamClosed
}
