package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestResolveStyle(t *testing.T) {
	custom := metadata.StyleParams{LightIntensity: 0.1, AmbientIntensity: 0.2, Metalness: 0.3, Roughness: 0.4, Reflectivity: 0.5}

	tests := []struct {
		name  string
		style metadata.StyleProps
		want  metadata.StyleParams
	}{
		{"flat has no directional light", metadata.StyleProps{Name: metadata.StyleFlat}, styles[metadata.StyleFlat]},
		{"glossy", metadata.StyleProps{Name: metadata.StyleGlossy}, styles[metadata.StyleGlossy]},
		{"custom passes params through", metadata.StyleProps{Name: metadata.StyleCustom, Params: custom}, custom},
		{"params ignored for named styles", metadata.StyleProps{Name: metadata.StyleMetallic, Params: custom}, styles[metadata.StyleMetallic]},
		{"unknown falls back to matte", metadata.StyleProps{Name: "velvet"}, styles[metadata.StyleMatte]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStyle(tt.style))
		})
	}
	assert.Zero(t, ResolveStyle(metadata.StyleProps{Name: metadata.StyleFlat}).LightIntensity)
}

func TestKnownStyle(t *testing.T) {
	for _, n := range []metadata.StyleName{metadata.StyleMatte, metadata.StyleGlossy, metadata.StyleMetallic, metadata.StylePlastic, metadata.StyleFlat, metadata.StyleCustom} {
		assert.True(t, KnownStyle(n), n)
	}
	assert.False(t, KnownStyle("velvet"))
}
