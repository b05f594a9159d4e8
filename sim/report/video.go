package report

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// VideoRecorder appends one lattice frame per call to an MJPEG AVI file.
type VideoRecorder struct {
	writer   mjpeg.AviWriter
	cellSize int
	width    int // grid cells
	height   int
	quality  int
	frames   int
}

// NewVideoRecorder creates path and prepares a width x height grid recording.
func NewVideoRecorder(path string, width, height, cellSize, fps int) (*VideoRecorder, error) {
	if cellSize < 1 {
		cellSize = 1
	}
	if fps < 1 {
		fps = 1
	}
	aw, err := mjpeg.New(path, int32(width*cellSize), int32(height*cellSize), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("creating video %s: %w", path, err)
	}
	return &VideoRecorder{writer: aw, cellSize: cellSize, width: width, height: height, quality: 90}, nil
}

// AddFrame renders src and appends it. The grid size must match the recorder's.
func (v *VideoRecorder) AddFrame(src GridSource) error {
	if src.Width() != v.width || src.Height() != v.height {
		return fmt.Errorf("frame %d: grid %dx%d does not match recording %dx%d",
			v.frames, src.Width(), src.Height(), v.width, v.height)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, RenderGrid(src, v.cellSize), &jpeg.Options{Quality: v.quality}); err != nil {
		return fmt.Errorf("encoding frame %d: %w", v.frames, err)
	}
	if err := v.writer.AddFrame(buf.Bytes()); err != nil {
		return fmt.Errorf("adding frame %d: %w", v.frames, err)
	}
	v.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (v *VideoRecorder) Frames() int { return v.frames }

// Close finalizes the AVI index. The file is unusable until Close returns.
func (v *VideoRecorder) Close() error {
	return v.writer.Close()
}
