// Package settings loads the two-tier configuration of a note: the mutable
// geometry line and the immutable style file.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/storage"
)

// Recognized style keys.
const (
	KeyBgColor    = "bgColor"
	KeyBarColor   = "barColor"
	KeyFontColor  = "fontColor"
	KeyFontFamily = "fontFamily"
	KeyFontSize   = "fontSize"
	KeyFontWeight = "fontWeight"
	KeyXAdjust    = "xAdjust"
	KeyYAdjust    = "yAdjust"
	KeyBorderless = "ORR"
)

// KeyGeometry is the reserved lookup key for the geometry line. It never
// appears in the style file.
const KeyGeometry = "geo"

// Font weights.
const (
	WeightNormal = "normal"
	WeightBold   = "bold"
)

// Style holds the typed immutable settings.
type Style struct {
	BgColor    string `json:"bgColor"`
	BarColor   string `json:"barColor"`
	FontColor  string `json:"fontColor"`
	FontFamily string `json:"fontFamily"`
	FontSize   int    `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
	XAdjust    int    `json:"xAdjust"`
	YAdjust    int    `json:"yAdjust"`
	Borderless bool   `json:"ORR"`
}

// Validate validates the style.
func (s *Style) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.BgColor, validation.Required),
		validation.Field(&s.BarColor, validation.Required),
		validation.Field(&s.FontColor, validation.Required),
		validation.Field(&s.FontFamily, validation.Required),
		validation.Field(&s.FontSize, validation.Required, validation.Min(1), validation.Max(400)),
		validation.Field(&s.FontWeight, validation.Required, validation.In(WeightNormal, WeightBold)),
	)
}

// Settings is the loaded configuration of one note.
type Settings struct {
	Geometry models.Geometry
	Style    Style
	raw      map[string]string
}

// Lookup returns the value of key as text. Keys present in the style file
// come back verbatim, including ones the application does not recognize.
// Recognized keys missing from the file report the default the typed Style
// was filled with. The geometry line is available under KeyGeometry. Only a
// key that is neither in the file nor recognized is ErrUnknownSettingKey.
func (s *Settings) Lookup(key string) (string, error) {
	if key == KeyGeometry {
		return s.Geometry.String(), nil
	}
	if v, ok := s.raw[key]; ok {
		return v, nil
	}
	if v, ok := s.Style.value(key); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrUnknownSettingKey, key)
}

// value renders a recognized key the way the style file spells it.
func (s Style) value(key string) (string, bool) {
	switch key {
	case KeyBgColor:
		return s.BgColor, true
	case KeyBarColor:
		return s.BarColor, true
	case KeyFontColor:
		return s.FontColor, true
	case KeyFontFamily:
		return s.FontFamily, true
	case KeyFontSize:
		return strconv.Itoa(s.FontSize), true
	case KeyFontWeight:
		return s.FontWeight, true
	case KeyXAdjust:
		return strconv.Itoa(s.XAdjust), true
	case KeyYAdjust:
		return strconv.Itoa(s.YAdjust), true
	case KeyBorderless:
		return strconv.FormatBool(s.Borderless), true
	}
	return "", false
}

// Load reads and validates both config files of a note. Callers must
// bootstrap the note first; a missing file yields ErrConfigMissing.
func Load(store storage.Provider, paths models.NotePaths) (*Settings, error) {
	geoData, err := readConfig(store, paths.Geometry)
	if err != nil {
		return nil, err
	}
	styleData, err := readConfig(store, paths.Style)
	if err != nil {
		return nil, err
	}

	geo, err := ParseGeometry(string(geoData))
	if err != nil {
		return nil, fmt.Errorf("settings: %s: %w", paths.Geometry, err)
	}
	raw, err := ParseStyle(bytes.NewReader(styleData))
	if err != nil {
		return nil, fmt.Errorf("settings: %s: %w", paths.Style, err)
	}
	style, err := StyleFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("settings: %s: %w", paths.Style, err)
	}
	return &Settings{Geometry: geo, Style: style, raw: raw}, nil
}

func readConfig(store storage.Provider, path string) ([]byte, error) {
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("settings: %w: %s", apperr.ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("settings: %w", err)
	}
	return data, nil
}

// DefaultGeometry is the geometry written on config reset.
func DefaultGeometry() models.Geometry {
	return models.Geometry{Width: 300, Height: 200, X: 100, Y: 100}
}

// DefaultStyle is the style written on config reset. Keys missing from a
// style file also take these values.
func DefaultStyle() Style {
	return Style{
		BgColor:    "#FFF7D1",
		BarColor:   "#FFE66E",
		FontColor:  "#202020",
		FontFamily: "Consolas",
		FontSize:   11,
		FontWeight: WeightNormal,
		XAdjust:    0,
		YAdjust:    0,
		Borderless: false,
	}
}

// DefaultGeometryFile renders the default geometry.txt content.
func DefaultGeometryFile() []byte {
	return []byte(DefaultGeometry().String())
}

// DefaultStyleFile renders the default style.txt content.
func DefaultStyleFile() []byte {
	s := DefaultStyle()
	var b bytes.Buffer
	b.WriteString("# Sticky note style. One `key: value` per line, values without spaces.\n")
	b.WriteString("# Lines starting with '#' are ignored.\n\n")
	b.WriteString("# Colors\n")
	fmt.Fprintf(&b, "%s: %s\n", KeyBgColor, s.BgColor)
	fmt.Fprintf(&b, "%s: %s\n", KeyBarColor, s.BarColor)
	fmt.Fprintf(&b, "%s: %s\n\n", KeyFontColor, s.FontColor)
	b.WriteString("# Font\n")
	fmt.Fprintf(&b, "%s: %s\n", KeyFontFamily, s.FontFamily)
	fmt.Fprintf(&b, "%s: %d\n", KeyFontSize, s.FontSize)
	fmt.Fprintf(&b, "%s: %s\n\n", KeyFontWeight, s.FontWeight)
	b.WriteString("# Added to the reported window position on save.\n")
	b.WriteString("# Window managers that report the client origin need e.g. -8 and -31.\n")
	fmt.Fprintf(&b, "%s: %d\n", KeyXAdjust, s.XAdjust)
	fmt.Fprintf(&b, "%s: %d\n\n", KeyYAdjust, s.YAdjust)
	b.WriteString("# Borderless window without a title bar.\n")
	fmt.Fprintf(&b, "%s: %s\n", KeyBorderless, strconv.FormatBool(s.Borderless))
	return b.Bytes()
}
