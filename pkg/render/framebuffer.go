package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/chazu/csgray/pkg/vecmath"
)

// Framebuffer receives finished pixels. Workers write disjoint pixels
// concurrently, so implementations must tolerate parallel PutPixel calls
// for different coordinates.
type Framebuffer interface {
	PutPixel(x, y int, r, g, b uint8)
}

// ImageFramebuffer stores pixels in an RGBA image.
type ImageFramebuffer struct {
	img *image.RGBA
}

// NewImageFramebuffer allocates a width×height framebuffer.
func NewImageFramebuffer(width, height int) *ImageFramebuffer {
	return &ImageFramebuffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (f *ImageFramebuffer) PutPixel(x, y int, r, g, b uint8) {
	f.img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
}

// Image returns the backing image.
func (f *ImageFramebuffer) Image() *image.RGBA {
	return f.img
}

// WritePNG encodes the current contents.
func (f *ImageFramebuffer) WritePNG(w io.Writer) error {
	if err := png.Encode(w, f.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ToBytes clamps a colour to [0, 1] and scales it to byte channels.
func ToBytes(c vecmath.Vec3) (r, g, b uint8) {
	c = c.Clamp(0, 1)
	return uint8(c.X * 255), uint8(c.Y * 255), uint8(c.Z * 255)
}
