// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging post-processes AI-generated course artwork before it
// is stored on a course record.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Thumbnail dimensions for course cards, 16:9.
const (
	ThumbWidth  = 1280
	ThumbHeight = 720
)

// Processor normalizes generated images into course thumbnails.
type Processor struct {
	width  int
	height int
}

// NewProcessor creates a processor producing ThumbWidth x ThumbHeight
// thumbnails.
func NewProcessor() *Processor {
	return &Processor{width: ThumbWidth, height: ThumbHeight}
}

// Thumbnail decodes raw image bytes, center-crops them to the card
// aspect ratio and returns a PNG data URI suitable for storing in a
// course record. Images already smaller than the target are upscaled
// so cards render at a uniform size.
func (p *Processor) Thumbnail(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Fill(img, p.width, p.height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Dimensions returns the bounds of an encoded image without keeping
// the pixels around.
func Dimensions(data []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("read image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
