// Package tmx parses the XML tile-map documents the worlds are authored in.
package tmx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path"
	"strconv"
	"strings"
)

var (
	ErrMalformedMap = errors.New("tmx: malformed map")
	ErrUnknownMap   = errors.New("tmx: map not found")
)

// Map is the root of a tile-map document.
type Map struct {
	Name       string     `xml:"-"`
	Width      int        `xml:"width,attr"`
	Height     int        `xml:"height,attr"`
	TileWidth  int        `xml:"tilewidth,attr"`
	TileHeight int        `xml:"tileheight,attr"`
	Properties Properties `xml:"properties"`
	Tilesets   []Tileset  `xml:"tileset"`
	// Layers holds tile layers and object groups in authoring order.
	Layers []Layer `xml:",any"`
}

type Tileset struct {
	FirstGID uint32 `xml:"firstgid,attr"`
	Name     string `xml:"name,attr"`
	Source   string `xml:"source,attr"`
}

// LayerType tells tile layers apart from object groups.
type LayerType int

const (
	LayerOther LayerType = iota
	LayerTiles
	LayerObjects
)

// Layer is either a <layer> or an <objectgroup>; XMLName tells them apart.
type Layer struct {
	XMLName    xml.Name
	ID         int        `xml:"id,attr"`
	Name       string     `xml:"name,attr"`
	Width      int        `xml:"width,attr"`
	Height     int        `xml:"height,attr"`
	VisibleRaw *int       `xml:"visible,attr"`
	Properties Properties `xml:"properties"`
	Data       *Data      `xml:"data"`
	Objects    []Object   `xml:"object"`
}

func (l *Layer) Type() LayerType {
	switch l.XMLName.Local {
	case "layer":
		return LayerTiles
	case "objectgroup":
		return LayerObjects
	default:
		return LayerOther
	}
}

// Visible reports the authored visibility. A missing attribute means visible.
func (l *Layer) Visible() bool {
	return l.VisibleRaw == nil || *l.VisibleRaw != 0
}

type Data struct {
	Encoding    string     `xml:"encoding,attr"`
	Compression string     `xml:"compression,attr"`
	Text        string     `xml:",chardata"`
	Tiles       []DataTile `xml:"tile"`
}

type DataTile struct {
	GID uint32 `xml:"gid,attr"`
}

// Object is a free-standing object. Objects with a GID are tile objects,
// the rest are annotation shapes.
type Object struct {
	ID         int        `xml:"id,attr"`
	Name       string     `xml:"name,attr"`
	Class      string     `xml:"type,attr"`
	GID        uint32     `xml:"gid,attr"`
	X          float64    `xml:"x,attr"`
	Y          float64    `xml:"y,attr"`
	Width      float64    `xml:"width,attr"`
	Height     float64    `xml:"height,attr"`
	Rotation   float64    `xml:"rotation,attr"`
	VisibleRaw *int       `xml:"visible,attr"`
	Properties Properties `xml:"properties"`
}

func (o *Object) IsTile() bool {
	return o.GID != 0
}

type Properties struct {
	List []Property `xml:"property"`
}

type Property struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

// Get returns the value of the named property. Multi-line string
// properties keep their value in the element body.
func (p Properties) Get(name string) (string, bool) {
	for _, prop := range p.List {
		if prop.Name != name {
			continue
		}
		if prop.Value == "" && strings.TrimSpace(prop.Text) != "" {
			return strings.TrimSpace(prop.Text), true
		}
		return prop.Value, true
	}
	return "", false
}

func (p Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

func (p Properties) Int(name string) (int, bool, error) {
	v, ok := p.Get(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, true, fmt.Errorf("%w: property %s=%q is not an int", ErrMalformedMap, name, v)
	}
	return n, true, nil
}

func (p Properties) Bool(name string) (bool, bool, error) {
	v, ok := p.Get(name)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, true, fmt.Errorf("%w: property %s=%q is not a bool", ErrMalformedMap, name, v)
	}
	return b, true, nil
}

// Parse reads a map document.
func Parse(r io.Reader, name string) (*Map, error) {
	var m Map
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMap, name, err)
	}
	m.Name = name
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid dimensions %dx%d", ErrMalformedMap, name, m.Width, m.Height)
	}

	kept := m.Layers[:0]
	for _, ly := range m.Layers {
		if ly.Type() == LayerOther {
			log.Printf("tmx: %s: ignoring <%s> element", name, ly.XMLName.Local)
			continue
		}
		if ly.Type() == LayerTiles && ly.Data == nil {
			return nil, fmt.Errorf("%w: %s: layer %q has no data", ErrMalformedMap, name, ly.Name)
		}
		kept = append(kept, ly)
	}
	m.Layers = kept
	return &m, nil
}

// Load opens name (".tmx" appended when missing) from fsys and parses it.
func Load(fsys fs.FS, name string) (*Map, error) {
	file := name
	if path.Ext(file) == "" {
		file += ".tmx"
	}
	f, err := fsys.Open(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMap, file)
		}
		return nil, fmt.Errorf("tmx: open %s: %w", file, err)
	}
	defer f.Close()

	return Parse(f, strings.TrimSuffix(name, ".tmx"))
}
