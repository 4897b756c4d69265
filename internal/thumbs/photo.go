package thumbs

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/disintegration/imaging"
)

// FromPhoto downscales the photo so neither dimension exceeds the cap,
// preserving aspect ratio, and re-encodes it as a lossy JPEG data URI.
// Sources already under the cap are re-encoded without scaling. Returns ""
// when the payload does not decode as an image.
func (g *Generator) FromPhoto(ctx context.Context, payload []byte) string {
	img, err := imaging.Decode(bytes.NewReader(payload), imaging.AutoOrientation(true))
	if err != nil {
		g.log.Warn(ctx, "photo does not decode, no thumbnail", "err", err)
		return ""
	}

	bounds := img.Bounds()
	if bounds.Dx() > g.maxDim || bounds.Dy() > g.maxDim {
		img = imaging.Fit(img, g.maxDim, g.maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(g.quality)); err != nil {
		g.log.Warn(ctx, "thumbnail encode failed", "err", err)
		return ""
	}

	return jpegDataURI(buf.Bytes())
}

func jpegDataURI(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}
