package indexer

import (
	"encoding/json"

	"swap-mirror/internal/domain"
)

// MetadataBlob is the useful subset of an NFT metadata JSON blob as
// stored by indexers. Blobs in the wild are frequently malformed, so
// ParseMetadataBlob never fails; absent or unreadable fields stay zero.
type MetadataBlob struct {
	Name       string
	Image      string
	Attributes []domain.NFTAttribute
}

type rawMetadataBlob struct {
	Name       string                `json:"name"`
	Image      string                `json:"image"`
	ImageURL   string                `json:"image_url"`
	Attributes []domain.NFTAttribute `json:"attributes"`
}

// ParseMetadataBlob extracts name, image and attributes from a raw NFT
// metadata blob. A nil pointer or unparseable blob yields an empty result.
func ParseMetadataBlob(blob *string) MetadataBlob {
	if blob == nil || *blob == "" {
		return MetadataBlob{}
	}

	var raw rawMetadataBlob
	if err := json.Unmarshal([]byte(*blob), &raw); err != nil {
		return MetadataBlob{}
	}

	image := raw.Image
	if image == "" {
		image = raw.ImageURL
	}

	return MetadataBlob{
		Name:       raw.Name,
		Image:      image,
		Attributes: raw.Attributes,
	}
}
