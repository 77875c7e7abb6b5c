package renderer

import "github.com/spaghettifunk/lumen/engine/renderer/metadata"

var styles = map[metadata.StyleName]metadata.StyleParams{
	metadata.StyleFlat:     {LightIntensity: 0, AmbientIntensity: 1, Metalness: 0, Roughness: 0.4, Reflectivity: 0.5},
	metadata.StyleMatte:    {LightIntensity: 0.7, AmbientIntensity: 0.3, Metalness: 0, Roughness: 1, Reflectivity: 0.5},
	metadata.StyleGlossy:   {LightIntensity: 0.7, AmbientIntensity: 0.3, Metalness: 0, Roughness: 0.4, Reflectivity: 0.5},
	metadata.StyleMetallic: {LightIntensity: 0.7, AmbientIntensity: 0.7, Metalness: 0.6, Roughness: 0.6, Reflectivity: 0.5},
	metadata.StylePlastic:  {LightIntensity: 0.7, AmbientIntensity: 0.3, Metalness: 0, Roughness: 0.2, Reflectivity: 0.5},
}

// ResolveStyle maps a style to its lighting coefficients. Custom styles pass
// their parameters through; unknown names resolve to matte.
func ResolveStyle(s metadata.StyleProps) metadata.StyleParams {
	if s.Name == metadata.StyleCustom {
		return s.Params
	}
	if p, ok := styles[s.Name]; ok {
		return p
	}
	return styles[metadata.StyleMatte]
}

// KnownStyle reports whether name is one of the named styles or custom.
func KnownStyle(name metadata.StyleName) bool {
	_, ok := styles[name]
	return ok || name == metadata.StyleCustom
}
