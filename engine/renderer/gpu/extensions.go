package gpu

// Extensions is the capability probe of a context. It is read once when a
// renderer is created.
type Extensions struct {
	TextureFloat     bool
	ColorBufferFloat bool
	DepthTexture     bool
	DrawBuffers      bool
	// FragDepth reports that programs can write fragment depth, which
	// direct volumes need to keep hardware depth testing on.
	FragDepth bool
}

// AllExtensions reports every optional capability as present.
func AllExtensions() Extensions {
	return Extensions{
		TextureFloat:     true,
		ColorBufferFloat: true,
		DepthTexture:     true,
		DrawBuffers:      true,
		FragDepth:        true,
	}
}

// SupportsWBOIT reports whether weighted blended transparency can be used:
// float textures, float colour attachments and depth textures are required.
func (e Extensions) SupportsWBOIT() bool {
	return e.TextureFloat && e.ColorBufferFloat && e.DepthTexture
}
