package dataurl

import (
	"encoding/base64"
	"strings"

	"github.com/samber/oops"
)

const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
)

// Image is a decoded screenshot ready for upload.
type Image struct {
	Data      []byte
	MediaType string
}

// Parse decodes a base64 data URI into raw bytes and a media type.
// Image formats other than PNG and JPEG are treated as PNG so that an
// unexpected capture format does not stall the pipeline.
func Parse(uri string) (Image, error) {
	meta, payload, found := strings.Cut(uri, ",")
	if !found {
		return Image{}, oops.Errorf("not a data URI")
	}

	mediaType := MediaTypePNG
	if strings.HasPrefix(meta, "data:"+MediaTypeJPEG) {
		mediaType = MediaTypeJPEG
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, oops.Errorf("failed to decode image payload: %w", err)
	}

	return Image{
		Data:      data,
		MediaType: mediaType,
	}, nil
}

// Encode renders an image back into data URI form.
func Encode(img Image) string {
	return "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
