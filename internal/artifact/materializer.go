// Package artifact downloads generated images to local disk.
//
// A batch is processed one image at a time, in order. Each image produces
// exactly one Artifact whether or not its download succeeded, so callers can
// always report the original URL for the ones that failed.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/minimax-mcp/internal/fal"
	"github.com/ironsheep/minimax-mcp/internal/imaging"
	"github.com/ironsheep/minimax-mcp/internal/infra"
)

// Artifact is the outcome of materializing one image.
type Artifact struct {
	Image fal.Image

	// Index is the 0-based position in the batch.
	Index    int
	Filename string

	// LocalPath is the absolute path of the written file, empty on failure.
	LocalPath string
	Err       error

	// Info is set when the downloaded file could be read back as an image.
	Info *imaging.ImageInfo
}

// Downloaded reports whether the file was written.
func (a Artifact) Downloaded() bool {
	return a.LocalPath != ""
}

// Options configures a Materializer.
type Options struct {
	Dir        string
	Downloader Downloader
	Logger     *infra.Logger

	// Now and Probe are overridable for tests.
	Now   func() time.Time
	Probe func(path string) (*imaging.ImageInfo, error)
}

// Materializer writes image batches into a directory.
type Materializer struct {
	dir        string
	downloader Downloader
	logger     *infra.Logger
	now        func() time.Time
	probe      func(string) (*imaging.ImageInfo, error)
}

// New builds a Materializer with defaults for unset options.
func New(opts Options) *Materializer {
	m := &Materializer{
		dir:        opts.Dir,
		downloader: opts.Downloader,
		logger:     opts.Logger,
		now:        opts.Now,
		probe:      opts.Probe,
	}
	if m.dir == "" {
		m.dir = infra.DefaultOutputDir
	}
	if m.downloader == nil {
		m.downloader = NewHTTPDownloader(nil)
	}
	if m.logger == nil {
		l := infra.NopLogger()
		m.logger = &l
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.probe == nil {
		m.probe = imaging.Probe
	}
	return m
}

// Dir returns the output directory as configured.
func (m *Materializer) Dir() string {
	return m.dir
}

// Materialize downloads images in order and returns one Artifact per input.
// namingSeed is the text the filenames are derived from; seed, when set, is
// the batch-wide generation seed appended to every name.
func (m *Materializer) Materialize(ctx context.Context, images []fal.Image, namingSeed string, seed *int64) []Artifact {
	out := make([]Artifact, len(images))
	for i, img := range images {
		out[i] = m.materializeOne(ctx, i, img, namingSeed, seed)
	}
	return out
}

func (m *Materializer) materializeOne(ctx context.Context, index int, img fal.Image, namingSeed string, seed *int64) Artifact {
	a := Artifact{
		Image:    img,
		Index:    index,
		Filename: Filename(namingSeed, seed, index+1, m.now()),
	}

	localPath, err := m.save(ctx, img.URL, a.Filename)
	if err != nil {
		a.Err = err
		m.logger.Warn().
			Err(err).
			Int("index", index).
			Str("url", img.URL).
			Msg("image download failed")
		return a
	}
	a.LocalPath = localPath

	info, err := m.probe(localPath)
	if err != nil {
		m.logger.Debug().Err(err).Str("path", localPath).Msg("could not read back image")
	} else {
		a.Info = info
	}

	m.logger.Info().
		Int("index", index).
		Str("path", localPath).
		Msg("image saved")
	return a
}

func (m *Materializer) save(ctx context.Context, rawURL, filename string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("image has no url")
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure output directory: %w", err)
	}
	dest, err := filepath.Abs(filepath.Join(m.dir, filename))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if err := m.downloader.Download(ctx, rawURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}
