// Package util loads and saves rasters and snapshot files.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/snapshot"
)

// ImageFile is a decoded image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Size is the encoded size in bytes.
	Size int
	// Format is the detected encoding.
	Format images.ImageFormat
	// Image is the decoded raster.
	Image *images.Image
}

// LoadImageFile reads and decodes a PNG, JPEG or WebP file.
//
// Arguments:
// - path: Path to the image file.
//
// Returns:
// - ImageFile: The decoded image and its metadata.
// - error: Error if reading or decoding fails.
func LoadImageFile(path string) (ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, errors.Wrap(err, "read image")
	}
	img, format, err := images.DecodeBytes(data)
	if err != nil {
		return ImageFile{}, errors.Wrapf(err, "load %s", path)
	}
	return ImageFile{Path: path, Size: len(data), Format: format, Image: img}, nil
}

// LoadDirectoryImageFiles reads all image files from a directory, sorted by
// file name. Subdirectories and files with other extensions are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The decoded images.
// - error: Error if any image fails to load.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read directory")
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := images.FormatFromFilename(entry.Name()); err != nil {
			continue
		}
		f, err := LoadImageFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// SaveImageFile encodes img in the format implied by the path's extension.
//
// Returns:
// - The number of bytes written.
func SaveImageFile(path string, img *images.Image, opts images.EncodeOptions) (int, error) {
	format, err := images.FormatFromFilename(path)
	if err != nil {
		return 0, err
	}
	data, err := images.EncodeBytes(img, format, opts)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, errors.Wrap(err, "write image")
	}
	return len(data), nil
}

// LoadSnapshotFile decodes a .yaml, .yml or .json snapshot. A raster
// background's RasterRef is resolved relative to the snapshot's directory and
// decoded into Background.Raster.
//
// @example
// snap, err := util.LoadSnapshotFile("edits/poster.yaml")
func LoadSnapshotFile(path string) (snapshot.Snapshot, error) {
	enc, err := snapshot.EncodingFromFilename(path)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	snap, err := snapshot.Decode(f, enc)
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrapf(err, "load %s", path)
	}

	if snap.Background.Kind == compositor.BackgroundRaster && snap.Background.Raster.IsEmpty() {
		ref := snap.Background.RasterRef
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(filepath.Dir(path), ref)
		}
		bg, err := LoadImageFile(ref)
		if err != nil {
			return snapshot.Snapshot{}, errors.Wrap(err, "background raster")
		}
		snap.Background.Raster = bg.Image
	}
	return snap, nil
}

// SaveSnapshotFile encodes snap in the encoding implied by the path's
// extension.
func SaveSnapshotFile(path string, snap snapshot.Snapshot) error {
	enc, err := snapshot.EncodingFromFilename(path)
	if err != nil {
		return err
	}
	data, err := snapshot.EncodeBytes(snap, enc)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write snapshot")
}

// OutputPath maps an input file into dir with the extension of format.
func OutputPath(dir, input string, format images.ImageFormat) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+format.Extension())
}
