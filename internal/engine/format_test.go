package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name string
		want ArchiveFormat
	}{
		{"x.tar.gz", FormatTarGzip},
		{"X.TAR.GZ", FormatTarGzip},
		{"x.tgz", FormatTarGzip},
		{"x.gz", FormatGzip},
		{"archive.tar.7z.001", FormatTar7z},
		{"archive.7z.001", FormatSevenZip},
		{"a.tar.7z", FormatTar7z},
		{"a.t7z", FormatTar7z},
		{"a.7z", FormatSevenZip},
		{"a.tar.Z", FormatTarCompress},
		{"a.Z", FormatCompress},
		{"a.tar.bz2", FormatTarBzip2},
		{"a.tbz2", FormatTarBzip2},
		{"a.bz2", FormatBzip2},
		{"a.tar.lz", FormatTarLzip},
		{"a.lz", FormatLzip},
		{"a.tar.xz", FormatTarXz},
		{"a.txz", FormatTarXz},
		{"a.xz", FormatXz},
		{"a.tar.lzma", FormatTarLzma},
		{"a.tlz", FormatTarLzma},
		{"a.lzma", FormatLzma},
		{"a.tar.zst", FormatTarZstd},
		{"a.zst", FormatZstd},
		{"a.zip", FormatZip},
		{"a.rar", FormatRar},
		{"a.tar", FormatTar},
		{"/some/dir.zip/file.tar", FormatTar},
		{"relative/path/Backup.RAR", FormatRar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFormat_Unknown(t *testing.T) {
	for _, name := range []string{"a.txt", "noext", "dir.tar.gz/file", ""} {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveFormat(name)
			require.Error(t, err)
			assert.Equal(t, FormatUnknown, got)
			assert.ErrorIs(t, err, ErrUnknownFormat)

			var unknown *UnknownFormatError
			require.ErrorAs(t, err, &unknown)
		})
	}
}

func TestResolveFormat_EverySuffix(t *testing.T) {
	for _, entry := range suffixTable {
		for _, name := range []string{"name" + entry.suffix, "NAME" + strings.ToUpper(entry.suffix)} {
			got, err := ResolveFormat(name)
			require.NoError(t, err, name)
			assert.Equal(t, entry.format, got, name)
		}
	}
}

func TestSuffixes(t *testing.T) {
	assert.Equal(t, []string{".tar.gz", ".tgz"}, Suffixes(FormatTarGzip))
	assert.Equal(t, []string{".7z", ".7z.001"}, Suffixes(FormatSevenZip))
	assert.Empty(t, Suffixes(FormatUnknown))
}

func TestFormats(t *testing.T) {
	formats := Formats()
	assert.Len(t, formats, 19)
	assert.NotContains(t, formats, FormatUnknown)
	for _, f := range formats {
		assert.NotEmpty(t, Suffixes(f), f.String())
	}
}

func TestArchiveFormat_Capabilities(t *testing.T) {
	for _, f := range Formats() {
		t.Run(f.String(), func(t *testing.T) {
			password := f == FormatSevenZip || f == FormatZip || f == FormatRar || f == FormatTar7z
			assert.Equal(t, password, f.SupportsPassword())
			assert.Equal(t, password, f.SupportsSplit())
			assert.Equal(t, f == FormatRar, f.SupportsRecoveryRecord())
			assert.False(t, f.TarWrapped() && f.SingleFile())
		})
	}

	assert.True(t, FormatTarZstd.TarWrapped())
	assert.False(t, FormatTar.TarWrapped())
	assert.True(t, FormatCompress.SingleFile())
	assert.False(t, FormatZip.SingleFile())
	assert.Equal(t, ".tar.gz", FormatGzip.TarCounterpart())
	assert.Equal(t, ".tar.Z", FormatCompress.TarCounterpart())
	assert.Equal(t, "unknown", FormatUnknown.String())
}
