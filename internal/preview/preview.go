// Package preview derives lightweight preview descriptors for
// uploaded files: direct URLs for images, cached first-frame
// thumbnails for videos, short snippets for text files.
package preview

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"gengallery/internal/model"
)

const (
	// thumbnailWidth is the target width for video thumbnails; height
	// follows the source aspect ratio.
	thumbnailWidth = 300
	// thumbnailQuality is the JPEG quality for encoded thumbnails.
	thumbnailQuality = 85
)

// Generator builds PreviewInfo values for file entries. Video
// thumbnails are cached under ThumbnailDir and served under
// ThumbnailURLPrefix.
type Generator struct {
	ThumbnailDir       string
	ThumbnailURLPrefix string
	Decoder            FrameDecoder
	Log                *logrus.Logger
}

func NewGenerator(thumbnailDir string, decoder FrameDecoder, log *logrus.Logger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{
		ThumbnailDir:       thumbnailDir,
		ThumbnailURLPrefix: "/thumbnails",
		Decoder:            decoder,
		Log:                log,
	}
}

// Generate returns the preview for a file entry, or nil when the
// category has no preview strategy. folder is the public URL segment
// the file is served under ("uploads" or "generated"). Derivation
// failures are absorbed: a video preview with a nil thumbnail, a text
// preview with an empty snippet.
func (g *Generator) Generate(entry model.FileEntry, folder string) *model.PreviewInfo {
	switch entry.Category {
	case model.CategoryImage:
		return &model.PreviewInfo{
			Type:     model.CategoryImage,
			Filename: entry.Filename,
			URL:      "/" + folder + "/" + entry.Filename,
		}
	case model.CategoryVideo:
		return &model.PreviewInfo{
			Type:      model.CategoryVideo,
			Filename:  entry.Filename,
			Thumbnail: g.videoThumbnail(entry.FullPath, entry.Filename),
		}
	case model.CategoryText:
		text := TextSnippet(entry.FullPath)
		return &model.PreviewInfo{
			Type:     model.CategoryText,
			Filename: entry.Filename,
			Text:     &text,
		}
	default:
		return nil
	}
}

// videoThumbnail returns the URL of the cached first-frame thumbnail
// for the named video, generating it on first use. Returns nil when
// the frame cannot be decoded; this never surfaces as an error.
func (g *Generator) videoThumbnail(videoPath, filename string) *string {
	name := ThumbnailName(filename)
	cachePath := filepath.Join(g.ThumbnailDir, name)
	url := g.ThumbnailURLPrefix + "/" + name

	// Cache hit: trust the existing file, do not re-decode.
	if _, err := os.Stat(cachePath); err == nil {
		return &url
	}

	if g.Decoder == nil || !g.Decoder.Available() {
		g.Log.Debugf("frame decoder unavailable, no thumbnail for %s", filename)
		return nil
	}

	frame, err := g.Decoder.FirstFrame(videoPath)
	if err != nil {
		g.Log.Warnf("video thumbnail for %s failed: %v", filename, err)
		return nil
	}

	resized := imaging.Resize(frame, thumbnailWidth, 0, imaging.Lanczos)
	if err := os.MkdirAll(g.ThumbnailDir, 0755); err != nil {
		g.Log.Warnf("create thumbnail dir: %v", err)
		return nil
	}
	if err := imaging.Save(resized, cachePath, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		g.Log.Warnf("save thumbnail %s: %v", cachePath, err)
		return nil
	}
	return &url
}

// ThumbnailName derives the deterministic cache file name for a video:
// thumb_<stem>.jpg.
func ThumbnailName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return "thumb_" + stem + ".jpg"
}
