// Package archive implements the post-collection archive writer (spec
// §4.8/§6.1). Grounded on original_source/src/archive/archiver.py for the
// walk-and-write shape, using archive/zip and archive/tar+compress/gzip
// from the standard library with klauspost/compress's flate for the zip
// deflate method (the same library hugescm in the retrieved corpus uses
// for its archive paths). Bzip2 and xz compression, and the 7z container
// format, have no pure-Go writer anywhere in the retrieved corpus — a
// request for one of those returns an Archive-tagged error rather than
// silently falling back, per spec §7's "archive failures never abort the
// job" contract.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"collector/internal/apperrors"
	"collector/internal/types"
)

// ProgressFunc receives one notification per archived file.
type ProgressFunc func(current, total int, currentFile string)

// Write creates an archive of every regular file under sourceDir at
// targetFile, in the requested format and compression.
func Write(sourceDir, targetFile string, format types.ArchiveFormat, compression types.ArchiveCompression, progress ProgressFunc) error {
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return apperrors.New(apperrors.Archive, "source directory does not exist: "+sourceDir)
	}

	files, err := listFiles(sourceDir)
	if err != nil {
		return apperrors.Wrap(apperrors.Archive, "enumerate source directory", err)
	}
	if len(files) == 0 {
		return apperrors.New(apperrors.Archive, "no files found in source directory: "+sourceDir)
	}

	if err := os.MkdirAll(filepath.Dir(targetFile), 0o755); err != nil {
		return apperrors.Wrap(apperrors.Archive, "create archive parent directory", err)
	}

	switch format {
	case types.ArchiveZip:
		return writeZip(sourceDir, targetFile, files, progress)
	case types.ArchiveTar:
		return writeTar(sourceDir, targetFile, files, compression, progress)
	default:
		return apperrors.New(apperrors.Archive, fmt.Sprintf("unsupported archive format: %s", format))
	}
}

func listFiles(sourceDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func writeZip(sourceDir, targetFile string, files []string, progress ProgressFunc) error {
	out, err := os.Create(targetFile)
	if err != nil {
		return apperrors.Wrap(apperrors.Archive, "create zip archive file", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	// Register a deflate implementation backed by klauspost/compress for
	// faster throughput than the standard library's own flate writer.
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	total := len(files)
	for i, file := range files {
		if err := addFileToZip(zw, sourceDir, file); err != nil {
			return apperrors.Wrap(apperrors.Archive, "write file to zip archive: "+file, err)
		}
		if progress != nil {
			progress(i+1, total, file)
		}
	}
	return nil
}

func addFileToZip(zw *zip.Writer, sourceDir, file string) error {
	rel, err := filepath.Rel(sourceDir, file)
	if err != nil {
		return err
	}

	in, err := os.Open(file)
	if err != nil {
		return err
	}
	defer in.Close()

	header, err := zip.FileInfoHeader(mustStat(in))
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

func mustStat(f *os.File) os.FileInfo {
	info, _ := f.Stat()
	return info
}

func writeTar(sourceDir, targetFile string, files []string, compression types.ArchiveCompression, progress ProgressFunc) error {
	if compression != types.CompressionNone && compression != types.CompressionGzip {
		return apperrors.New(apperrors.Archive, fmt.Sprintf("unsupported tar compression: %s", compression))
	}

	out, err := os.Create(targetFile)
	if err != nil {
		return apperrors.Wrap(apperrors.Archive, "create tar archive file", err)
	}
	defer out.Close()

	var tw *tar.Writer
	var gz *gzip.Writer
	if compression == types.CompressionGzip {
		gz = gzip.NewWriter(out)
		tw = tar.NewWriter(gz)
	} else {
		tw = tar.NewWriter(out)
	}

	total := len(files)
	for i, file := range files {
		if err := addFileToTar(tw, sourceDir, file); err != nil {
			_ = tw.Close()
			if gz != nil {
				_ = gz.Close()
			}
			return apperrors.Wrap(apperrors.Archive, "write file to tar archive: "+file, err)
		}
		if progress != nil {
			progress(i+1, total, file)
		}
	}

	if err := tw.Close(); err != nil {
		return apperrors.Wrap(apperrors.Archive, "finalize tar archive", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return apperrors.Wrap(apperrors.Archive, "finalize gzip stream", err)
		}
	}
	return nil
}

func addFileToTar(tw *tar.Writer, sourceDir, file string) error {
	rel, err := filepath.Rel(sourceDir, file)
	if err != nil {
		return err
	}

	in, err := os.Open(file)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, in)
	return err
}

// SuggestedName returns the conventional archive filename for format and
// compression, matching original_source's archive_name derivation.
func SuggestedName(format types.ArchiveFormat, compression types.ArchiveCompression) string {
	switch format {
	case types.ArchiveTar:
		switch compression {
		case types.CompressionGzip:
			return "archive.tar.gz"
		case types.CompressionBzip2:
			return "archive.tar.bz2"
		case types.CompressionXz:
			return "archive.tar.xz"
		default:
			return "archive.tar"
		}
	case types.Archive7z:
		return "archive.7z"
	default:
		return "archive.zip"
	}
}
