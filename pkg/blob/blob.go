package blob

// Package blob holds the floating-point image representation that flows
// through the sample-preparation pipeline, and the scaling step that turns a
// decoded image into network input ("blob") form.

import (
	"fmt"

	"github.com/bmharper/cimg/v2"
	"gorgonia.org/tensor"
)

// Image is an H x W x 3 float32 image, row major, interleaved channels.
// Pipeline stages own the image they are handed and may mutate it in place;
// an image never outlives the fetch that created it.
type Image struct {
	Width  int
	Height int
	Pixels []float32 // len = Width * Height * 3
}

// Per-axis scale factors applied when resizing for the blob.
type Scale struct {
	X float32
	Y float32
}

// ImInfo describes the final image the network sees: its dimensions and the
// scale factors that were applied to reach them. Crop/pad stages update
// Height/Width as they change the image.
type ImInfo struct {
	Height float32
	Width  float32
	ScaleY float32
	ScaleX float32
}

// Tensor returns im_info as a length-4 vector (height, width, scaleY, scaleX).
func (ii ImInfo) Tensor() *tensor.Dense {
	return tensor.New(tensor.WithShape(4), tensor.WithBacking([]float32{ii.Height, ii.Width, ii.ScaleY, ii.ScaleX}))
}

func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]float32, width*height*3),
	}
}

// FromCImage converts a decoded RGB image to float32. Call ToRGB() on the
// cimg image first if it might be gray or RGBA.
func FromCImage(img *cimg.Image) (*Image, error) {
	if img.NChan() != 3 {
		return nil, fmt.Errorf("expected a 3 channel image, have %v channels", img.NChan())
	}
	out := NewImage(img.Width, img.Height)
	for i, b := range img.Pixels {
		out.Pixels[i] = float32(b)
	}
	return out, nil
}

// Row returns the y'th row (Width*3 floats), aliasing the image buffer.
func (im *Image) Row(y int) []float32 {
	return im.Pixels[y*im.Width*3 : (y+1)*im.Width*3]
}

// CropRows returns the horizontal band [y0, y0+height). The returned image
// shares the receiver's buffer, which is fine because ownership moves with it.
func (im *Image) CropRows(y0, height int) *Image {
	return &Image{
		Width:  im.Width,
		Height: height,
		Pixels: im.Pixels[y0*im.Width*3 : (y0+height)*im.Width*3],
	}
}

// CropCols returns the vertical band [x0, x0+width) as a new image.
// Unlike CropRows this has to copy, because rows are no longer contiguous.
func (im *Image) CropCols(x0, width int) *Image {
	out := NewImage(width, im.Height)
	for y := 0; y < im.Height; y++ {
		src := im.Row(y)[x0*3 : (x0+width)*3]
		copy(out.Row(y), src)
	}
	return out
}

// FlipHorizontal mirrors the image in place.
func (im *Image) FlipHorizontal() {
	for y := 0; y < im.Height; y++ {
		row := im.Row(y)
		for x1, x2 := 0, im.Width-1; x1 < x2; x1, x2 = x1+1, x2-1 {
			for c := 0; c < 3; c++ {
				row[x1*3+c], row[x2*3+c] = row[x2*3+c], row[x1*3+c]
			}
		}
	}
}

// SubtractMean removes the per-channel mean in place.
func (im *Image) SubtractMean(mean [3]float32) {
	for i := 0; i < len(im.Pixels); i += 3 {
		im.Pixels[i] -= mean[0]
		im.Pixels[i+1] -= mean[1]
		im.Pixels[i+2] -= mean[2]
	}
}

// SwapRB exchanges the first and third channel in place (RGB <-> BGR).
func (im *Image) SwapRB() {
	for i := 0; i < len(im.Pixels); i += 3 {
		im.Pixels[i], im.Pixels[i+2] = im.Pixels[i+2], im.Pixels[i]
	}
}

// ToCHW permutes the image into the 3 x H x W layout that the training loop
// consumes. The result has freshly allocated backing.
func (im *Image) ToCHW() *tensor.Dense {
	w, h := im.Width, im.Height
	out := make([]float32, 3*h*w)
	for y := 0; y < h; y++ {
		row := im.Row(y)
		for x := 0; x < w; x++ {
			out[y*w+x] = row[x*3]
			out[h*w+y*w+x] = row[x*3+1]
			out[2*h*w+y*w+x] = row[x*3+2]
		}
	}
	return tensor.New(tensor.WithShape(3, h, w), tensor.WithBacking(out))
}

// Prep scales a decoded image for use as network input and reports the scale
// factors that were applied. In the default mode the shorter side is scaled
// to targetSize, keeping the aspect ratio. With fixSize the two axes are
// scaled independently so the result is exactly targetSize x targetSize.
func Prep(img *cimg.Image, targetSize int, fixSize bool) (*Image, Scale, error) {
	var scale Scale
	if fixSize {
		scale.X = float32(targetSize) / float32(img.Width)
		scale.Y = float32(targetSize) / float32(img.Height)
	} else {
		sizeMin := min(img.Width, img.Height)
		s := float32(targetSize) / float32(sizeMin)
		scale.X = s
		scale.Y = s
	}
	newWidth := int(float32(img.Width)*scale.X + 0.5)
	newHeight := int(float32(img.Height)*scale.Y + 0.5)
	if newWidth != img.Width || newHeight != img.Height {
		img = cimg.ResizeNew(img, newWidth, newHeight, nil)
	}
	out, err := FromCImage(img)
	if err != nil {
		return nil, Scale{}, err
	}
	return out, scale, nil
}
