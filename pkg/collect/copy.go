package collect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/util"
)

// copyFileWithLimit copies one candidate file into the bundle, applying the
// per-file size ceiling. Every outcome lands in exactly one of the copy
// report's three lists; a failure here never aborts the run.
func copyFileWithLimit(src string, dest string, report *bundle.CopyReport, maxBytes int64, includeOversized bool) {
	info, err := os.Stat(src)
	if err != nil {
		report.AddMissing(src, statReason(err))
		return
	}

	if !includeOversized && info.Size() > maxBytes {
		report.AddSkippedLarge(src, info.Size(), maxBytes)
		return
	}

	if err := copyFile(src, dest, info); err != nil {
		report.AddMissing(src, fmt.Sprintf("copy failed: %v", err))
		return
	}

	report.AddCopied(src, dest)
}

// copyDirWithLimit walks a source directory recursively and copies each file
// under dest, preserving the relative layout. Unreadable subtrees are
// recorded and skipped.
func copyDirWithLimit(srcDir string, destDir string, report *bundle.CopyReport, maxBytes int64, includeOversized bool) {
	if _, err := os.Stat(srcDir); err != nil {
		report.AddMissing(srcDir, statReason(err))
		return
	}

	filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			report.AddMissing(path, fmt.Sprintf("walk failed: %v", err))
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			report.AddMissing(path, fmt.Sprintf("walk failed: %v", err))
			return nil
		}

		copyFileWithLimit(path, filepath.Join(destDir, rel), report, maxBytes, includeOversized)
		return nil
	})
}

// copyFile preserves the original file name and modification time.
func copyFile(src string, dest string, info os.FileInfo) error {
	if err := util.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	os.Chtimes(dest, info.ModTime(), info.ModTime())
	return nil
}

func statReason(err error) string {
	if os.IsNotExist(err) {
		return "source does not exist"
	}
	return fmt.Sprintf("source not readable: %v", err)
}
