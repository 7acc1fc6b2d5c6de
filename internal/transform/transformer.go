package transform

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/merkulive/photoshare/internal/errs"
)

// Preset 变换预设名称
type Preset string

const (
	PresetThumbnail Preset = "thumbnail"
	PresetSquare    Preset = "square"
	PresetGrayscale Preset = "grayscale"
	PresetSepia     Preset = "sepia"
)

const (
	thumbnailMaxEdge = 200
	squareEdge       = 400
	jpegQuality      = 85
	qrCodeSize       = 256
)

// ParsePreset 解析预设名称
func ParsePreset(name string) (Preset, error) {
	switch Preset(name) {
	case PresetThumbnail, PresetSquare, PresetGrayscale, PresetSepia:
		return Preset(name), nil
	default:
		return "", errs.InvalidInputf("unknown transformation preset %q", name)
	}
}

// Apply 对源图片应用预设，返回 JPEG 编码后的结果
func Apply(src []byte, preset Preset) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, errs.InvalidInputf("could not decode source image: %v", err)
	}

	var out image.Image
	switch preset {
	case PresetThumbnail:
		out = scaleToFit(img, thumbnailMaxEdge)
	case PresetSquare:
		out = cropSquare(img, squareEdge)
	case PresetGrayscale:
		out = grayscale(img)
	case PresetSepia:
		out = sepia(img)
	default:
		return nil, errs.InvalidInputf("unknown transformation preset %q", preset)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode transformed image: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateQRCode 生成指向 url 的二维码 PNG
func GenerateQRCode(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// scaleToFit 等比缩放，使最长边不超过 maxEdge
func scaleToFit(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxEdge
		nh = h * maxEdge / w
	} else {
		nh = maxEdge
		nw = w * maxEdge / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// cropSquare 居中裁剪为正方形后缩放到 edge×edge
func cropSquare(img image.Image, edge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	side := w
	if h < side {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	srcRect := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, srcRect, draw.Over, nil)
	return dst
}

// grayscale 灰度化
func grayscale(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return dst
}

// sepia 棕褐色调
func sepia(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			fr := float64(r >> 8)
			fg := float64(g >> 8)
			fb := float64(bb >> 8)

			nr := 0.393*fr + 0.769*fg + 0.189*fb
			ng := 0.349*fr + 0.686*fg + 0.168*fb
			nb := 0.272*fr + 0.534*fg + 0.131*fb

			dst.Set(x, y, color.RGBA{
				R: clamp8(nr),
				G: clamp8(ng),
				B: clamp8(nb),
				A: uint8(a >> 8),
			})
		}
	}
	return dst
}

func clamp8(v float64) uint8 {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}
