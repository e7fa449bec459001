package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/color/palette"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
)

const (
	previewFrameCount = 3
	previewDelayCS    = 50 // GIF delay unit is 10ms: 50 == 500ms per frame
)

// Thumbnailer samples still frames from a video and assembles a short
// looping preview.
type Thumbnailer struct {
	FFmpegPath string
	Prober     *Prober
	Count      int // stills per video, default 5
	Width      int // still width in px, default 320
}

// Generate writes Count evenly spaced stills from the video into outDir and
// a looping GIF preview built from the first few. It returns the paths of
// the first still and the preview; both are empty when the source reports no
// frames, and the preview alone is empty when its assembly fails. Generate
// never fails the ingestion: all errors degrade to empty paths.
func (t *Thumbnailer) Generate(ctx context.Context, videoPath, outDir string) (thumb, preview string) {
	count := t.Count
	if count <= 0 {
		count = 5
	}
	width := t.Width
	if width <= 0 {
		width = 320
	}

	meta := t.Prober.Probe(ctx, videoPath)
	if meta.TotalFrames <= 0 {
		log.WithField("path", videoPath).Warn("no frames reported, skipping thumbnails")
		return "", ""
	}

	var stills []string
	for i, frameIdx := range frameIndices(meta.TotalFrames, count) {
		img, err := t.extractFrame(ctx, videoPath, frameIdx)
		if err != nil {
			log.WithFields(log.Fields{"path": videoPath, "frame": frameIdx, "error": err}).
				Warn("thumbnail frame extraction failed")
			continue
		}

		resized := imaging.Resize(img, width, 0, imaging.Linear)
		stillPath := filepath.Join(outDir, fmt.Sprintf("frame_%04d.jpg", i+1))
		if err := imaging.Save(resized, stillPath, imaging.JPEGQuality(90)); err != nil {
			log.WithFields(log.Fields{"path": stillPath, "error": err}).
				Warn("thumbnail save failed")
			continue
		}
		stills = append(stills, stillPath)
	}
	if len(stills) == 0 {
		return "", ""
	}

	previewPath := filepath.Join(outDir, "preview.gif")
	if err := assemblePreview(stills, previewPath); err != nil {
		// Partial success: keep the still, drop the preview.
		log.WithFields(log.Fields{"path": previewPath, "error": err}).
			Warn("preview assembly failed")
		return stills[0], ""
	}
	return stills[0], previewPath
}

// frameIndices spaces count indices linearly across [0, total-1] inclusive,
// rounding to the nearest frame.
func frameIndices(total, count int) []int {
	if count <= 1 || total <= 1 {
		return []int{0}
	}
	indices := make([]int, count)
	step := float64(total-1) / float64(count-1)
	for i := range indices {
		indices[i] = int(math.Round(float64(i) * step))
	}
	return indices
}

// extractFrame decodes a single frame by index as JPEG via ffmpeg.
func (t *Thumbnailer) extractFrame(ctx context.Context, videoPath string, index int) (image.Image, error) {
	ffmpeg := t.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-v", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"pipe:1",
	)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extract frame %d: %w", index, err)
	}

	img, err := jpeg.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", index, err)
	}
	return img, nil
}

// assemblePreview builds a GIF from the first few stills, 500ms per frame,
// looping indefinitely.
func assemblePreview(stills []string, dst string) error {
	n := len(stills)
	if n > previewFrameCount {
		n = previewFrameCount
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, path := range stills[:n] {
		img, err := imaging.Open(path)
		if err != nil {
			return fmt.Errorf("open still %s: %w", path, err)
		}
		paletted := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, img.Bounds(), img, image.Point{})
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, previewDelayCS)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer f.Close()
	return gif.EncodeAll(f, anim)
}
