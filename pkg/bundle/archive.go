package bundle

import (
	"compress/flate"

	"github.com/mholt/archiver"
	"github.com/pkg/errors"
)

// Archive packs a finished bundle directory into a sibling tar.gz so it can
// be attached to a forum post or a support ticket. The bundle itself is left
// untouched.
func Archive(bundleDir string) (string, error) {
	archivePath := bundleDir + ".tar.gz"

	tarGz := archiver.TarGz{
		CompressionLevel: flate.DefaultCompression,
		Tar: &archiver.Tar{
			ImplicitTopLevelFolder: false,
		},
	}
	if err := tarGz.Archive([]string{bundleDir}, archivePath); err != nil {
		return "", errors.Wrap(err, "failed to create archive")
	}

	return archivePath, nil
}
