package math

import "github.com/go-gl/mathgl/mgl32"

// NoneID is the identifier decoded from a pixel nothing was drawn to. Pick
// and depth targets are cleared to white, which packs to this value.
const NoneID uint32 = 1<<24 - 1

// PackID encodes a 24 bit identifier into a normalised RGB colour.
func PackID(id uint32) mgl32.Vec3 {
	id &= NoneID
	return mgl32.Vec3{
		float32((id>>16)&0xff) / 255,
		float32((id>>8)&0xff) / 255,
		float32(id&0xff) / 255,
	}
}

// UnpackID decodes an identifier from 8 bit RGB channels.
func UnpackID(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// PackDepth encodes a depth in [0, 1] into a normalised RGB colour with 24
// bits of precision. The scaling is done in float64: float32 cannot hold
// NoneID+0.5 and would round the far plane up to 1<<24.
func PackDepth(depth float32) mgl32.Vec3 {
	return PackID(uint32(float64(Saturate(depth))*float64(NoneID) + 0.5))
}

// UnpackDepth decodes a depth written by PackDepth.
func UnpackDepth(r, g, b uint8) float32 {
	return float32(UnpackID(r, g, b)) / float32(NoneID)
}
