package preview

import (
	"bytes"
	"image"
	"io"
	"os/exec"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FrameDecoder is the capability of reading the first frame of a video
// file. Implementations must report availability up front so callers
// can degrade to "no thumbnail" instead of failing.
type FrameDecoder interface {
	Available() bool
	FirstFrame(path string) (image.Image, error)
}

// FFmpegDecoder extracts frames by piping a single mjpeg frame out of
// the ffmpeg binary.
type FFmpegDecoder struct {
	available bool
}

// NewFFmpegDecoder probes for the ffmpeg binary on PATH. A missing
// binary is not an error; the decoder just reports unavailable.
func NewFFmpegDecoder() *FFmpegDecoder {
	_, err := exec.LookPath("ffmpeg")
	return &FFmpegDecoder{available: err == nil}
}

func (d *FFmpegDecoder) Available() bool {
	return d.available
}

// FirstFrame decodes the first frame of the video at path.
func (d *FFmpegDecoder) FirstFrame(path string) (image.Image, error) {
	if !d.available {
		return nil, errors.New("ffmpeg not available")
	}

	buf := bytes.NewBuffer(nil)
	err := ffmpeg.Input(path).
		Filter("select", ffmpeg.Args{"gte(n,0)"}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
		WithOutput(buf, io.Discard).
		Silent(true).
		Run()
	if err != nil {
		return nil, errors.Wrapf(err, "read first frame of %s", path)
	}

	img, err := imaging.Decode(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "decode frame of %s", path)
	}
	return img, nil
}
