package photos

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // jpeg decoder
	_ "image/png"  // png decoder

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	xwebp "golang.org/x/image/webp"
)

const jpegQuality = 82

// sizeSpec is one output resolution.
type sizeSpec struct {
	Tag      string
	MaxWidth int
}

// The three renditions produced for every photo.
var sizeSpecs = []sizeSpec{
	{Tag: "small", MaxWidth: 320},
	{Tag: "medium", MaxWidth: 768},
	{Tag: "large", MaxWidth: 1600},
}

// Variant is one re-encoded rendition ready for upload.
type Variant struct {
	SizeTag     string
	Data        []byte
	ContentType string
	Extension   string
}

// Transcode decodes the source image and produces the small/medium/large
// renditions, preserving the input format family (png/jpeg/webp).
// Unsupported formats fail permanently.
func Transcode(data []byte) ([]Variant, error) {
	src, format, err := decode(data)
	if err != nil {
		return nil, &PermanentError{Reason: fmt.Sprintf("unsupported image format: %v", err)}
	}

	variants := make([]Variant, 0, len(sizeSpecs))
	for _, spec := range sizeSpecs {
		resized := src
		if src.Bounds().Dx() > spec.MaxWidth {
			resized = imaging.Resize(src, spec.MaxWidth, 0, imaging.Lanczos)
		}

		encoded, contentType, ext, encErr := encode(resized, format)
		if encErr != nil {
			return nil, fmt.Errorf("encode %s variant: %w", spec.Tag, encErr)
		}

		variants = append(variants, Variant{
			SizeTag:     spec.Tag,
			Data:        encoded,
			ContentType: contentType,
			Extension:   ext,
		})
	}

	return variants, nil
}

// decode sniffs and decodes png, jpeg, or webp input.
func decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		switch format {
		case "jpeg", "png":
			return img, format, nil
		default:
			return nil, "", fmt.Errorf("format %q not supported", format)
		}
	}

	// image.Decode has no webp support; try the dedicated decoder.
	if webpImg, webpErr := xwebp.Decode(bytes.NewReader(data)); webpErr == nil {
		return webpImg, "webp", nil
	}

	return nil, "", err
}

// encode re-encodes at fixed quality in the source's format family.
func encode(img image.Image, format string) (data []byte, contentType, ext string, err error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
		contentType, ext = "image/jpeg", "jpg"
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
		contentType, ext = "image/png", "png"
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: jpegQuality})
		contentType, ext = "image/webp", "webp"
	default:
		return nil, "", "", fmt.Errorf("format %q not supported", format)
	}
	if err != nil {
		return nil, "", "", err
	}

	return buf.Bytes(), contentType, ext, nil
}
