// Package config reads renderer properties from TOML documents such as
//
//	background_color = "#ffffff"
//	picking_alpha_threshold = 0.5
//	transparency = "multi"
//
//	[style]
//	name = "glossy"
//
//	[[clip.objects]]
//	type = "sphere"
//	position = [0, 0, 0]
//	scale = [2, 2, 2]
//
// Files ending in .yaml or .yml are read as YAML with the same keys. Only
// the keys present in a document are applied.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type styleFile struct {
	Name             string   `toml:"name" yaml:"name"`
	LightIntensity   *float32 `toml:"light_intensity" yaml:"light_intensity"`
	AmbientIntensity *float32 `toml:"ambient_intensity" yaml:"ambient_intensity"`
	Metalness        *float32 `toml:"metalness" yaml:"metalness"`
	Roughness        *float32 `toml:"roughness" yaml:"roughness"`
	Reflectivity     *float32 `toml:"reflectivity" yaml:"reflectivity"`
}

type clipObjectFile struct {
	Type     string      `toml:"type" yaml:"type"`
	Position [3]float32  `toml:"position" yaml:"position"`
	Axis     [3]float32  `toml:"axis" yaml:"axis"`
	Angle    float32     `toml:"angle" yaml:"angle"`
	Scale    *[3]float32 `toml:"scale" yaml:"scale"`
}

type clipFile struct {
	Variant string           `toml:"variant" yaml:"variant"`
	Objects []clipObjectFile `toml:"objects" yaml:"objects"`
}

type file struct {
	BackgroundColor       *string    `toml:"background_color" yaml:"background_color"`
	PickingAlphaThreshold *float32   `toml:"picking_alpha_threshold" yaml:"picking_alpha_threshold"`
	Transparency          *string    `toml:"transparency" yaml:"transparency"`
	InteriorDarkening     *float32   `toml:"interior_darkening" yaml:"interior_darkening"`
	InteriorColorFlag     *bool      `toml:"interior_color_flag" yaml:"interior_color_flag"`
	InteriorColor         *string    `toml:"interior_color" yaml:"interior_color"`
	HighlightColor        *string    `toml:"highlight_color" yaml:"highlight_color"`
	SelectColor           *string    `toml:"select_color" yaml:"select_color"`
	Style                 *styleFile `toml:"style" yaml:"style"`
	Clip                  *clipFile  `toml:"clip" yaml:"clip"`
}

var clipTypes = map[string]metadata.ClipType{
	"none":          metadata.ClipNone,
	"plane":         metadata.ClipPlane,
	"sphere":        metadata.ClipSphere,
	"cube":          metadata.ClipCube,
	"cylinder":      metadata.ClipCylinder,
	"infinite-cone": metadata.ClipInfiniteCone,
}

// Load reads and parses the properties file at path.
func Load(path string) (metadata.PartialProps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return metadata.PartialProps{}, fmt.Errorf("read %s: %w", path, err)
	}
	parse := Parse
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parse = ParseYAML
	}
	pp, err := parse(data)
	if err != nil {
		return metadata.PartialProps{}, fmt.Errorf("%s: %w", path, err)
	}
	return pp, nil
}

// Parse decodes a TOML document. Unknown keys and out of range values are
// rejected with an error wrapping core.ErrInvalidProps.
func Parse(data []byte) (metadata.PartialProps, error) {
	var f file
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return metadata.PartialProps{}, fmt.Errorf("%s: %w", strict.String(), core.ErrInvalidProps)
		}
		return metadata.PartialProps{}, fmt.Errorf("decode: %v: %w", err, core.ErrInvalidProps)
	}
	return f.props()
}

// ParseYAML decodes a YAML document with the keys Parse accepts.
func ParseYAML(data []byte) (metadata.PartialProps, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return metadata.PartialProps{}, fmt.Errorf("decode: %v: %w", err, core.ErrInvalidProps)
	}
	return f.props()
}

func (f *file) props() (metadata.PartialProps, error) {
	var (
		pp  metadata.PartialProps
		err error
	)
	colors := []struct {
		key string
		src *string
		dst **mgl32.Vec3
	}{
		{"background_color", f.BackgroundColor, &pp.BackgroundColor},
		{"interior_color", f.InteriorColor, &pp.InteriorColor},
		{"highlight_color", f.HighlightColor, &pp.HighlightColor},
		{"select_color", f.SelectColor, &pp.SelectColor},
	}
	for _, c := range colors {
		if c.src == nil {
			continue
		}
		if *c.dst, err = ParseColor(*c.src); err != nil {
			return pp, fmt.Errorf("%s: %w", c.key, err)
		}
	}

	if pp.PickingAlphaThreshold, err = unit("picking_alpha_threshold", f.PickingAlphaThreshold); err != nil {
		return pp, err
	}
	if pp.InteriorDarkening, err = unit("interior_darkening", f.InteriorDarkening); err != nil {
		return pp, err
	}
	pp.InteriorColorFlag = f.InteriorColorFlag

	if f.Transparency != nil {
		var t metadata.TransparencyVariant
		switch strings.ToLower(*f.Transparency) {
		case "single":
			t = metadata.TransparencySingle
		case "multi":
			t = metadata.TransparencyMulti
		default:
			return pp, fmt.Errorf("transparency %q: want single or multi: %w", *f.Transparency, core.ErrInvalidProps)
		}
		pp.Transparency = &t
	}

	if f.Style != nil {
		if pp.Style, err = f.Style.props(); err != nil {
			return pp, err
		}
	}
	if f.Clip != nil {
		if pp.Clip, err = f.Clip.props(); err != nil {
			return pp, err
		}
	}
	return pp, nil
}

func (s *styleFile) props() (*metadata.StyleProps, error) {
	name := metadata.StyleName(strings.ToLower(s.Name))
	if !renderer.KnownStyle(name) {
		return nil, fmt.Errorf("style %q: %w", s.Name, core.ErrInvalidProps)
	}
	sp := &metadata.StyleProps{Name: name}
	if name != metadata.StyleCustom {
		return sp, nil
	}
	// Unset custom coefficients start from matte.
	sp.Params = renderer.ResolveStyle(metadata.StyleProps{Name: metadata.StyleMatte})
	fields := []struct {
		key string
		src *float32
		dst *float32
	}{
		{"light_intensity", s.LightIntensity, &sp.Params.LightIntensity},
		{"ambient_intensity", s.AmbientIntensity, &sp.Params.AmbientIntensity},
		{"metalness", s.Metalness, &sp.Params.Metalness},
		{"roughness", s.Roughness, &sp.Params.Roughness},
		{"reflectivity", s.Reflectivity, &sp.Params.Reflectivity},
	}
	for _, fl := range fields {
		v, err := unit("style."+fl.key, fl.src)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*fl.dst = *v
		}
	}
	return sp, nil
}

func (c *clipFile) props() (*metadata.ClipProps, error) {
	cp := &metadata.ClipProps{}
	switch strings.ToLower(c.Variant) {
	case "", "instance":
		cp.Variant = metadata.ClipVariantInstance
	case "pixel":
		cp.Variant = metadata.ClipVariantPixel
	default:
		return nil, fmt.Errorf("clip.variant %q: want instance or pixel: %w", c.Variant, core.ErrInvalidProps)
	}
	if len(c.Objects) > renderer.MaxClipObjects {
		return nil, fmt.Errorf("clip.objects: %d given, at most %d: %w", len(c.Objects), renderer.MaxClipObjects, core.ErrInvalidProps)
	}
	for i, o := range c.Objects {
		t, ok := clipTypes[strings.ToLower(o.Type)]
		if !ok {
			return nil, fmt.Errorf("clip.objects[%d].type %q: %w", i, o.Type, core.ErrInvalidProps)
		}
		scale := mgl32.Vec3{1, 1, 1}
		if o.Scale != nil {
			scale = mgl32.Vec3(*o.Scale)
		}
		cp.Objects = append(cp.Objects, metadata.ClipObject{
			Type:     t,
			Position: mgl32.Vec3(o.Position),
			Axis:     mgl32.Vec3(o.Axis),
			Angle:    o.Angle,
			Scale:    scale,
		})
	}
	return cp, nil
}

func unit(key string, v *float32) (*float32, error) {
	if v == nil {
		return nil, nil
	}
	if *v < 0 || *v > 1 {
		return nil, fmt.Errorf("%s = %g: want a value in [0, 1]: %w", key, *v, core.ErrInvalidProps)
	}
	return v, nil
}

// ParseColor parses a "#rrggbb" hex colour into 0..1 channels.
func ParseColor(s string) (*mgl32.Vec3, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("colour %q: %v: %w", s, err, core.ErrInvalidProps)
	}
	v := mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
	return &v, nil
}
