package hal

import (
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// WritePNG encodes img as PNG, scaled by an integer factor with
// nearest-neighbour sampling so pixel edges stay sharp.
func WritePNG(w io.Writer, img image.Image, scale int) error {
	if img == nil {
		return fmt.Errorf("write png: %w", ErrNotImplemented)
	}
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SnapshotPNG writes the last presented frame of fb.
func SnapshotPNG(w io.Writer, fb Framebuffer, scale int) error {
	s, ok := fb.(Snapshotter)
	if !ok {
		return fmt.Errorf("snapshot: %w", ErrNotImplemented)
	}
	return WritePNG(w, s.Snapshot(), scale)
}
