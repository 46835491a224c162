// Package imageopt generates the resized poster variants served to mobile
// clients. Optimization is best-effort: it runs after a successful upload
// and its failure never unwinds the ingestion that preceded it.
package imageopt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Optimizer rewrites posters into a JPEG variant capped at MaxWidth pixels,
// stored in the mobile/ subdirectory of SourceDir under the same base name
// with a normalized .jpg extension.
type Optimizer struct {
	SourceDir string // directory holding original posters
	MaxWidth  int    // maximum output width; narrower images are never upscaled
	Quality   int    // JPEG quality, 1-100
}

// Result reports the byte sizes of one optimization for logging and the
// upload response.
type Result struct {
	OriginalSize  int64  // size of the source file in bytes
	OptimizedSize int64  // size of the generated variant in bytes
	Savings       string // percentage saved, two decimals
	OptimizedPath string // path of the generated variant
}

// MobileFilename maps a poster filename to the name of its mobile variant:
// the same base name with any .png/.jpg/.jpeg extension rewritten to .jpg.
func MobileFilename(filename string) string {
	base := filepath.Base(filename)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".jpg", ".jpeg":
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
	}
	return base
}

// OptimizeForMobile reads one stored poster, scales it down to at most
// MaxWidth pixels wide preserving aspect ratio, re-encodes it as JPEG and
// writes it to the mobile/ directory. Images already narrower than MaxWidth
// are re-encoded at their original dimensions.
func (o *Optimizer) OptimizeForMobile(filename string) (*Result, error) {
	sourcePath := filepath.Join(o.SourceDir, filepath.Base(filename))
	targetDir := filepath.Join(o.SourceDir, "mobile")
	targetPath := filepath.Join(targetDir, MobileFilename(filename))

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, err
	}

	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > o.MaxWidth {
		// Height 0 keeps the aspect ratio.
		img = imaging.Resize(img, o.MaxWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, targetPath, imaging.JPEGQuality(o.Quality)); err != nil {
		return nil, err
	}

	dstInfo, err := os.Stat(targetPath)
	if err != nil {
		return nil, err
	}

	savings := 0.0
	if srcInfo.Size() > 0 {
		savings = float64(srcInfo.Size()-dstInfo.Size()) / float64(srcInfo.Size()) * 100
	}
	return &Result{
		OriginalSize:  srcInfo.Size(),
		OptimizedSize: dstInfo.Size(),
		Savings:       fmt.Sprintf("%.2f", savings),
		OptimizedPath: targetPath,
	}, nil
}
