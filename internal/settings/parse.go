package settings

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
)

var geometryRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseStyle reads `key: value` lines into a map. Lines whose first
// character is '#' and blank lines are skipped. Every other line must split
// on whitespace into exactly two tokens; the trailing ':' of the first token
// is dropped to form the key and the second token is kept verbatim.
// Keys are not checked against the known set here.
func ParseStyle(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want `key: value`, got %d tokens", apperr.ErrConfigParse, lineNo, len(fields))
		}
		key := strings.TrimSuffix(fields[0], ":")
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: empty key", apperr.ErrConfigParse, lineNo)
		}
		out[key] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfigParse, err)
	}
	return out, nil
}

// ParseGeometry parses a trimmed `WxH+X+Y` line.
func ParseGeometry(s string) (models.Geometry, error) {
	m := geometryRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return models.Geometry{}, fmt.Errorf("%w: geometry %q: want WxH+X+Y", apperr.ErrConfigParse, s)
	}
	var n [4]int
	for i := range n {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return models.Geometry{}, fmt.Errorf("%w: geometry %q: %v", apperr.ErrConfigParse, s, err)
		}
		n[i] = v
	}
	return models.Geometry{Width: n[0], Height: n[1], X: n[2], Y: n[3]}, nil
}

// StyleFromMap converts the raw style map into a typed Style. Keys missing
// from raw take their DefaultStyle value.
func StyleFromMap(raw map[string]string) (Style, error) {
	s := DefaultStyle()

	str := func(key string, dst *string) {
		if v, ok := raw[key]; ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not an integer", apperr.ErrConfigParse, key, v)
		}
		*dst = n
		return nil
	}

	str(KeyBgColor, &s.BgColor)
	str(KeyBarColor, &s.BarColor)
	str(KeyFontColor, &s.FontColor)
	str(KeyFontFamily, &s.FontFamily)
	if v, ok := raw[KeyFontWeight]; ok {
		s.FontWeight = strings.ToLower(v)
	}
	for key, dst := range map[string]*int{
		KeyFontSize: &s.FontSize,
		KeyXAdjust:  &s.XAdjust,
		KeyYAdjust:  &s.YAdjust,
	} {
		if err := num(key, dst); err != nil {
			return Style{}, err
		}
	}
	if v, ok := raw[KeyBorderless]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Style{}, fmt.Errorf("%w: %s: %q is not a boolean", apperr.ErrConfigParse, KeyBorderless, v)
		}
		s.Borderless = b
	}

	if err := s.Validate(); err != nil {
		return Style{}, fmt.Errorf("%w: %v", apperr.ErrConfigParse, err)
	}
	return s, nil
}
