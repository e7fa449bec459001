package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	log "github.com/sirupsen/logrus"

	"video-filter-api/internal/models"
)

// Engine drives frame-by-frame filtering: it decodes source frames through
// an ffmpeg rawvideo pipe, applies the transform in process, and feeds the
// results into a second ffmpeg process that encodes the destination
// container at the source frame rate and dimensions.
type Engine struct {
	FFmpegPath string
	Prober     *Prober
}

// Process filters src into dst. The destination writer failing to open is
// fatal; a decode failure mid-stream truncates the output to the frames
// already processed. Returns the number of frames written.
func (e *Engine) Process(ctx context.Context, src, dst string, filter models.Filter) (int, error) {
	meta := e.Prober.Probe(ctx, src)
	if meta.Width <= 0 || meta.Height <= 0 {
		return 0, fmt.Errorf("cannot determine dimensions of %s", src)
	}
	fps := meta.FPS
	if fps <= 0 {
		fps = 25
	}

	ffmpeg := e.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	reader := exec.CommandContext(ctx, ffmpeg,
		"-v", "error",
		"-i", src,
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	)
	frames, err := reader.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("open decode pipe: %w", err)
	}
	if err := reader.Start(); err != nil {
		return 0, fmt.Errorf("start decoder: %w", err)
	}
	defer reader.Wait()
	defer frames.Close()

	inputFormat := "bgr24"
	if filter.OutputChannels() == 1 {
		inputFormat = "gray"
	}
	writer := exec.CommandContext(ctx, ffmpeg,
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", inputFormat,
		"-video_size", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-pix_fmt", "yuv420p",
		dst,
	)
	sink, err := writer.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("open encode pipe: %w", err)
	}
	if err := writer.Start(); err != nil {
		return 0, fmt.Errorf("start encoder: %w", err)
	}

	written, loopErr := e.filterLoop(frames, sink, meta, filter)
	sink.Close()

	if waitErr := writer.Wait(); waitErr != nil && loopErr == nil {
		loopErr = fmt.Errorf("encoder failed: %w", waitErr)
	}
	if loopErr != nil {
		return written, loopErr
	}
	if written == 0 {
		return 0, fmt.Errorf("no frames decoded from %s", src)
	}

	log.WithFields(log.Fields{
		"src":    src,
		"filter": filter.String(),
		"frames": written,
	}).Info("video processed")
	return written, nil
}

func (e *Engine) filterLoop(frames io.Reader, sink io.Writer, meta Metadata, filter models.Filter) (int, error) {
	frameSize := meta.Width * meta.Height * 3
	buf := make([]byte, frameSize)
	written := 0

	for {
		_, err := io.ReadFull(frames, buf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Source exhausted, or decode failed mid-stream; the output is
			// truncated to the frames already written.
			return written, nil
		}
		if err != nil {
			return written, nil
		}

		in := Frame{Pix: buf, Width: meta.Width, Height: meta.Height, Channels: 3}
		out := ApplyFilter(filter, in)

		if _, err := sink.Write(out.Pix); err != nil {
			return written, fmt.Errorf("write frame %d: %w", written, err)
		}
		written++
		if written%100 == 0 && meta.TotalFrames > 0 {
			log.WithFields(log.Fields{
				"frames": written,
				"total":  meta.TotalFrames,
			}).Debug("filter progress")
		}
	}
}
