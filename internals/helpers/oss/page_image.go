package helper

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"rumble_backend/internals/configs"
)

/* =======================================================================
   Page image normalisation (ENV-driven)
======================================================================= */

type PageImageOptions struct {
	MaxW    int    // max width (resize keeps aspect)
	MaxH    int    // max height
	Format  string // "jpeg" | "webp"
	Quality int    // 1..100
}

func DefaultPageImageOptions() PageImageOptions {
	return PageImageOptions{
		MaxW:    configs.GetInt("PAGE_IMAGE_MAX_W", 2400),
		MaxH:    configs.GetInt("PAGE_IMAGE_MAX_H", 3200),
		Format:  strings.ToLower(configs.GetEnv("PAGE_IMAGE_FORMAT", "jpeg")),
		Quality: configs.GetInt("PAGE_IMAGE_QUALITY", 90),
	}
}

// decodeImage sniffs jpeg/png/webp, falling back to the extension. EXIF
// orientation is applied so the scorer sees an upright page.
func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	isWebP := strings.Contains(ct, "webp") ||
		(ct == "application/octet-stream" && strings.EqualFold(filepath.Ext(filename), ".webp"))
	if isWebP {
		return webp.Decode(bytes.NewReader(all))
	}
	img, err := imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unsupported image %s (%s): %w", filepath.Ext(filename), ct, err)
	}
	return img, nil
}

// NormalizePageImage decodes, shrinks to fit the bounds and re-encodes a page.
// It returns the encoded bytes and their content type.
func NormalizePageImage(raw []byte, filename string, opt PageImageOptions) ([]byte, string, error) {
	img, err := decodeImage(raw, filename)
	if err != nil {
		return nil, "", err
	}

	b := img.Bounds()
	if (opt.MaxW > 0 && b.Dx() > opt.MaxW) || (opt.MaxH > 0 && b.Dy() > opt.MaxH) {
		maxW, maxH := opt.MaxW, opt.MaxH
		if maxW <= 0 {
			maxW = b.Dx()
		}
		if maxH <= 0 {
			maxH = b.Dy()
		}
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}

	q := opt.Quality
	if q <= 0 || q > 100 {
		q = 90
	}

	buf := new(bytes.Buffer)
	if opt.Format == "webp" {
		if err := webp.Encode(buf, img, &webp.Options{Quality: float32(q)}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/webp", nil
	}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
