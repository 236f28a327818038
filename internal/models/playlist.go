package models

// Track is an immutable snapshot of one song fetched from the source service.
//
// Tracks carry no system-assigned id; two tracks are the same when name, artist and URI match.
type Track struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	ExternalURI string `json:"uri"`
}

// Key returns the identity of the track.
func (t Track) Key() string {
	return t.Name + "\x00" + t.Artist + "\x00" + t.ExternalURI
}

// Playlist is one entry of the source catalog.
type Playlist struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	OwnerDisplayName string `json:"owner"`
	TrackCount       int    `json:"track_count"`
	ImageURL         string `json:"image_url,omitempty"`
}

// Catalog is the user's source playlists, fetched once after login.
//
// Lookups never mutate the catalog, so resolving the same id always returns the same playlist.
type Catalog struct {
	order []string
	byID  map[string]Playlist
}

// NewCatalog indexes playlists by id. Later duplicates of an id are ignored.
func NewCatalog(playlists []Playlist) *Catalog {
	c := &Catalog{
		order: make([]string, 0, len(playlists)),
		byID:  make(map[string]Playlist, len(playlists)),
	}
	for _, p := range playlists {
		if _, ok := c.byID[p.ID]; ok {
			continue
		}
		c.order = append(c.order, p.ID)
		c.byID[p.ID] = p
	}
	return c
}

// Resolve looks up a playlist by id.
func (c *Catalog) Resolve(id string) (Playlist, bool) {
	if c == nil {
		return Playlist{}, false
	}
	p, ok := c.byID[id]
	return p, ok
}

// Playlists returns the catalog in fetch order.
func (c *Catalog) Playlists() []Playlist {
	if c == nil {
		return nil
	}
	out := make([]Playlist, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}

// Len returns the number of playlists in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}
