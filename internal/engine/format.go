package engine

import (
	"path/filepath"
	"strings"
)

// ArchiveFormat identifies the archive or compression scheme a file name denotes.
type ArchiveFormat int

const (
	FormatUnknown ArchiveFormat = iota
	FormatTar
	FormatTarCompress
	FormatTarGzip
	FormatTarBzip2
	FormatTarLzip
	FormatTarXz
	FormatTarLzma
	FormatTar7z
	FormatTarZstd
	FormatCompress
	FormatGzip
	FormatBzip2
	FormatLzip
	FormatXz
	FormatLzma
	FormatSevenZip
	FormatZip
	FormatRar
	FormatZstd
)

var formatNames = map[ArchiveFormat]string{
	FormatTar:         "tar",
	FormatTarCompress: "tar.Z",
	FormatTarGzip:     "tar.gz",
	FormatTarBzip2:    "tar.bz2",
	FormatTarLzip:     "tar.lz",
	FormatTarXz:       "tar.xz",
	FormatTarLzma:     "tar.lzma",
	FormatTar7z:       "tar.7z",
	FormatTarZstd:     "tar.zst",
	FormatCompress:    "Z",
	FormatGzip:        "gz",
	FormatBzip2:       "bz2",
	FormatLzip:        "lz",
	FormatXz:          "xz",
	FormatLzma:        "lzma",
	FormatSevenZip:    "7z",
	FormatZip:         "zip",
	FormatRar:         "rar",
	FormatZstd:        "zst",
}

func (f ArchiveFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

type suffixEntry struct {
	suffix string
	format ArchiveFormat
}

// suffixTable is matched in order. Compound suffixes precede the simple suffixes they end with.
var suffixTable = []suffixEntry{
	{".tar.z", FormatTarCompress},
	{".tar.gz", FormatTarGzip},
	{".tgz", FormatTarGzip},
	{".tar.bz2", FormatTarBzip2},
	{".tbz2", FormatTarBzip2},
	{".tar.lz", FormatTarLzip},
	{".tar.xz", FormatTarXz},
	{".txz", FormatTarXz},
	{".tar.lzma", FormatTarLzma},
	{".tlz", FormatTarLzma},
	{".tar.7z", FormatTar7z},
	{".tar.7z.001", FormatTar7z},
	{".t7z", FormatTar7z},
	{".tar.zst", FormatTarZstd},
	{".z", FormatCompress},
	{".zip", FormatZip},
	{".gz", FormatGzip},
	{".bz2", FormatBzip2},
	{".lz", FormatLzip},
	{".xz", FormatXz},
	{".lzma", FormatLzma},
	{".7z", FormatSevenZip},
	{".7z.001", FormatSevenZip},
	{".rar", FormatRar},
	{".zst", FormatZstd},
	{".tar", FormatTar},
}

// ResolveFormat maps a file name to its archive format. Only the final path segment is
// inspected and matching is case-insensitive.
func ResolveFormat(name string) (ArchiveFormat, error) {
	base := strings.ToLower(filepath.Base(name))
	for _, entry := range suffixTable {
		if strings.HasSuffix(base, entry.suffix) {
			return entry.format, nil
		}
	}
	return FormatUnknown, &UnknownFormatError{Name: filepath.Base(name)}
}

// Suffixes returns the file name suffixes that resolve to f, in matching order.
func Suffixes(f ArchiveFormat) []string {
	var out []string
	for _, entry := range suffixTable {
		if entry.format == f {
			out = append(out, entry.suffix)
		}
	}
	return out
}

// Formats returns every known format in declaration order.
func Formats() []ArchiveFormat {
	out := make([]ArchiveFormat, 0, len(formatNames))
	for f := FormatTar; f <= FormatZstd; f++ {
		out = append(out, f)
	}
	return out
}

// TarWrapped reports whether f is a tar stream piped through a second tool.
func (f ArchiveFormat) TarWrapped() bool {
	switch f {
	case FormatTarCompress, FormatTarGzip, FormatTarBzip2, FormatTarLzip,
		FormatTarXz, FormatTarLzma, FormatTar7z, FormatTarZstd:
		return true
	}
	return false
}

// SingleFile reports whether f compresses exactly one non-directory input.
func (f ArchiveFormat) SingleFile() bool {
	switch f {
	case FormatCompress, FormatGzip, FormatBzip2, FormatLzip, FormatXz, FormatLzma, FormatZstd:
		return true
	}
	return false
}

func (f ArchiveFormat) SupportsPassword() bool {
	switch f {
	case FormatSevenZip, FormatZip, FormatRar, FormatTar7z:
		return true
	}
	return false
}

func (f ArchiveFormat) SupportsSplit() bool {
	return f.SupportsPassword()
}

func (f ArchiveFormat) SupportsRecoveryRecord() bool {
	return f == FormatRar
}

// TarCounterpart returns the tar-wrapped extension to suggest when a single-file format is
// given several inputs or a directory.
func (f ArchiveFormat) TarCounterpart() string {
	switch f {
	case FormatCompress:
		return ".tar.Z"
	case FormatGzip:
		return ".tar.gz"
	case FormatBzip2:
		return ".tar.bz2"
	case FormatLzip:
		return ".tar.lz"
	case FormatXz:
		return ".tar.xz"
	case FormatLzma:
		return ".tar.lzma"
	case FormatZstd:
		return ".tar.zst"
	}
	return ".tar"
}
