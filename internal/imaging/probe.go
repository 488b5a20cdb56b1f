package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageInfo describes a downloaded image file.
type ImageInfo struct {
	// Width is the displayed width in pixels, after EXIF orientation.
	Width int `json:"width"`

	// Height is the displayed height in pixels, after EXIF orientation.
	Height int `json:"height"`

	// Format is the decoder that recognised the content: "png", "jpeg",
	// "gif" or "webp". Downloaded files are always named *.png, so this may
	// differ from the extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Probe reads an image file back from disk and reports its dimensions and
// actual encoding.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the content is not a PNG, JPEG, GIF or WebP image
func Probe(path string) (*ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format, err := sniffFormat(path)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// sniffFormat reads only the image header to find which registered decoder
// accepts the content.
func sniffFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode image header: %w", err)
	}
	return format, nil
}
