package metadata

import "github.com/spaghettifunk/lumen/engine/renderer/gpu"

/** @brief An off-screen colour + depth target a frame can be rendered into. */
type RenderTarget struct {
	Label       string
	Framebuffer gpu.Framebuffer
	Color       gpu.Texture
	/** @brief Sampleable depth; nil when depth textures are unsupported. */
	Depth gpu.Texture
	/** @brief Attachment-only depth used when Depth is nil. */
	DepthBuffer gpu.Texture
	Width       int
	Height      int
}
