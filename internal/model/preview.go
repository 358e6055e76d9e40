package model

import "encoding/json"

// PreviewInfo is the derived, lossy representation of a single file
// used for gallery rendering. Which fields are present depends on the
// category: images carry a url, videos a thumbnail (null when the
// frame could not be decoded), text files a short snippet.
type PreviewInfo struct {
	Type      Category
	Filename  string
	URL       string
	Thumbnail *string
	Text      *string
}

type previewJSON struct {
	Type      Category `json:"type"`
	Filename  string   `json:"filename,omitempty"`
	URL       string   `json:"url,omitempty"`
	Thumbnail **string `json:"thumbnail,omitempty"`
	Text      *string  `json:"text,omitempty"`
}

// MarshalJSON keeps the on-disk shape category-specific: a video
// preview always carries a thumbnail key, even when its value is null,
// while image and text previews never do.
func (p PreviewInfo) MarshalJSON() ([]byte, error) {
	out := previewJSON{
		Type:     p.Type,
		Filename: p.Filename,
		URL:      p.URL,
		Text:     p.Text,
	}
	if p.Type == CategoryVideo {
		out.Thumbnail = &p.Thumbnail
	}
	return json.Marshal(out)
}

func (p *PreviewInfo) UnmarshalJSON(data []byte) error {
	var in struct {
		Type      Category `json:"type"`
		Filename  string   `json:"filename"`
		URL       string   `json:"url"`
		Thumbnail *string  `json:"thumbnail"`
		Text      *string  `json:"text"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.Type = in.Type
	p.Filename = in.Filename
	p.URL = in.URL
	p.Thumbnail = in.Thumbnail
	p.Text = in.Text
	return nil
}
