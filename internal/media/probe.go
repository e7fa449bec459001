package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Metadata describes a video container. All fields default to zero when
// extraction fails; callers must treat zero values as "unknown", not as an
// error.
type Metadata struct {
	DurationSec float64 `json:"duration_sec"`
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	SizeBytes   int64   `json:"size_bytes"`
	TotalFrames int     `json:"-"`
}

// Prober extracts container metadata via ffprobe.
type Prober struct {
	FFprobePath string
}

// Probe extracts metadata from a staged video file. The primary path reads
// container-level metadata; when that fails (corrupt header, unsupported
// container) it falls back to counting decoded frames and deriving duration
// as frames/fps. Both paths failing yields zero metadata rather than an
// error. The byte size always comes from the filesystem.
func (p *Prober) Probe(ctx context.Context, path string) Metadata {
	var meta Metadata
	if info, err := os.Stat(path); err == nil {
		meta.SizeBytes = info.Size()
	}

	if err := p.probeContainer(ctx, path, &meta); err == nil {
		return meta
	} else {
		log.WithFields(log.Fields{"path": path, "error": err}).
			Warn("container probe failed, falling back to frame count")
	}

	if err := p.probeFrameStream(ctx, path, &meta); err != nil {
		log.WithFields(log.Fields{"path": path, "error": err}).
			Error("metadata extraction failed, using zero metadata")
	}
	return meta
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	NBReadFrames string `json:"nb_read_frames"`
	Duration     string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *Prober) probeContainer(ctx context.Context, path string, meta *Metadata) error {
	out, err := p.run(ctx, "-show_format", "-show_streams", path)
	if err != nil {
		return err
	}

	stream, ok := out.videoStream()
	if !ok {
		return fmt.Errorf("no video stream in %s", path)
	}

	meta.Width = stream.Width
	meta.Height = stream.Height
	meta.FPS = parseRate(stream.RFrameRate)

	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && d > 0 {
		meta.DurationSec = d
	} else if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil && d > 0 {
		meta.DurationSec = d
	} else {
		return fmt.Errorf("no usable duration in %s", path)
	}

	if n, err := strconv.Atoi(stream.NBFrames); err == nil && n > 0 {
		meta.TotalFrames = n
	} else if meta.FPS > 0 {
		meta.TotalFrames = int(math.Round(meta.DurationSec * meta.FPS))
	}
	return nil
}

// probeFrameStream walks the decoded frame stream; slower, but survives
// containers whose headers lost their duration.
func (p *Prober) probeFrameStream(ctx context.Context, path string, meta *Metadata) error {
	out, err := p.run(ctx, "-count_frames", "-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames,r_frame_rate,width,height", path)
	if err != nil {
		return err
	}

	stream, ok := out.videoStream()
	if !ok && len(out.Streams) > 0 {
		stream = out.Streams[0]
		ok = true
	}
	if !ok {
		return fmt.Errorf("no streams in %s", path)
	}

	meta.Width = stream.Width
	meta.Height = stream.Height
	meta.FPS = parseRate(stream.RFrameRate)

	frames, err := strconv.Atoi(stream.NBReadFrames)
	if err != nil || frames <= 0 {
		return fmt.Errorf("no decodable frames in %s", path)
	}
	meta.TotalFrames = frames
	if meta.FPS > 0 {
		meta.DurationSec = float64(frames) / meta.FPS
	}
	return nil
}

func (p *Prober) run(ctx context.Context, args ...string) (*ffprobeOutput, error) {
	ffprobe := p.FFprobePath
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobe,
		append([]string{"-v", "error", "-print_format", "json"}, args...)...)
	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var out ffprobeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &out, nil
}

func (o *ffprobeOutput) videoStream() (ffprobeStream, bool) {
	for _, st := range o.Streams {
		if st.CodecType == "video" || st.CodecType == "" {
			return st, true
		}
	}
	return ffprobeStream{}, false
}

// parseRate converts ffprobe's fractional frame rate ("30000/1001") to a
// float. Malformed or zero-denominator rates parse to 0.
func parseRate(rate string) float64 {
	if rate == "" {
		return 0
	}
	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
