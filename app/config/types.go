package config

// Item kinds a creator can be monitored for.
const (
	KindPost  = "post"
	KindVideo = "video"
)

// Creator is one monitored account from the watch-list file.
// The list is loaded once at startup and immutable for the process lifetime.
type Creator struct {
	UID     string   `yaml:"uid"`
	Name    string   `yaml:"name"`
	Enabled bool     `yaml:"enabled"`
	Monitor []string `yaml:"monitor"`
}

// Monitors reports whether the creator is watched for the given item kind.
func (c Creator) Monitors(kind string) bool {
	for _, k := range c.Monitor {
		if k == kind {
			return true
		}
	}
	return false
}

type WatchList struct {
	Creators []Creator `yaml:"creators"`
}

// Enabled returns only the creators with the enabled flag set.
func (w *WatchList) Enabled() []Creator {
	enabled := make([]Creator, 0, len(w.Creators))
	for _, c := range w.Creators {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	return enabled
}
