package watcher

import (
	"os"
	"time"
)

// poller detects changes by comparing file stats between ticks.
type poller struct {
	paths []string
	state map[string]fileSnapshot
}

type fileSnapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

func newPoller(paths []string) *poller {
	p := &poller{paths: paths}
	p.state = p.snapshot()
	return p
}

func (p *poller) snapshot() map[string]fileSnapshot {
	state := make(map[string]fileSnapshot, len(p.paths))
	for _, path := range p.paths {
		info, err := os.Stat(path)
		if err != nil {
			state[path] = fileSnapshot{}
			continue
		}
		state[path] = fileSnapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
	}
	return state
}

// changes returns one event per path whose stat differs from the previous
// call, in path order.
func (p *poller) changes(now time.Time) []FileEvent {
	current := p.snapshot()
	var events []FileEvent
	for _, path := range p.paths {
		prev, cur := p.state[path], current[path]
		var op Operation
		switch {
		case !prev.exists && cur.exists:
			op = OpCreate
		case prev.exists && !cur.exists:
			op = OpDelete
		case cur.exists && (prev.modTime != cur.modTime || prev.size != cur.size):
			op = OpModify
		default:
			continue
		}
		events = append(events, FileEvent{Path: path, Operation: op, Timestamp: now})
	}
	p.state = current
	return events
}
