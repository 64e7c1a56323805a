package scenes

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

type ChangeKind uint8

const (
	ChangeScene ChangeKind = iota
	ChangeScript
	ChangeSettings
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeScript:
		return "script"
	case ChangeSettings:
		return "settings"
	default:
		return "scene"
	}
}

// Change is one debounced edit to a file under the scenes directory.
type Change struct {
	Path string
	Kind ChangeKind
	// Name is the file name without directory or extension, e.g. "home" or
	// "magnet_pulse".
	Name string
}

// Watcher reports scene, settings and script edits on Events. It owns one
// goroutine; consumers drain the channels from the game loop.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches dirs, or Dir and its scripts directory when none are
// given.
func NewWatcher(dirs ...string) (*Watcher, error) {
	if len(dirs) == 0 {
		dirs = []string{Dir, filepath.Join(Dir, "scripts")}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Poll returns the changes queued since the last call without blocking.
func (w *Watcher) Poll() []Change {
	var out []Change
	for {
		select {
		case c := <-w.Events:
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			change, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (Change, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	switch {
	case ext == ".tengo":
		return Change{Path: path, Kind: ChangeScript, Name: name}, true
	case (ext == ".yaml" || ext == ".yml") && name == SettingsName:
		return Change{Path: path, Kind: ChangeSettings, Name: name}, true
	case ext == ".yaml" || ext == ".yml":
		return Change{Path: path, Kind: ChangeScene, Name: name}, true
	}
	return Change{}, false
}
