package formatter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/consensuslabs/extformatter/internal/formatter/mocks"
	"github.com/consensuslabs/extformatter/internal/tempfile"
	"github.com/consensuslabs/extformatter/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStagedFormatter_FormatsCopiesAndWritesBackChanges(t *testing.T) {
	dir := t.TempDir()
	base := t.TempDir()
	foo := testhelper.WriteFile(t, dir, "Foo.java", "foo\n")
	same := testhelper.WriteFile(t, dir, "Same.java", "ALREADY FORMATTED\n")

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(same, old, old))

	log := testhelper.NewTestLogger(false)
	target := NewExternalFormatter(newScriptConfig(t), log)
	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: base}, log)

	require.NoError(t, staged.ReformatFiles(context.Background(), []string{foo, same}))

	assert.Equal(t, "FOO\n", testhelper.ReadFile(t, foo))
	assert.Equal(t, "ALREADY FORMATTED\n", testhelper.ReadFile(t, same))

	info, err := os.Stat(same)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged original must not be rewritten")

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory must be disposed")
}

func TestStagedFormatter_FormatterSeesOnlyTempCopies(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := t.TempDir()
	foo := testhelper.WriteFile(t, dir, "Foo.java", "foo\n")

	target := &mocks.MockCodeFormatter{}
	var seen string
	target.On("ReformatFile", ctx, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			seen = args.String(1)
			require.NoError(t, os.WriteFile(seen, []byte("formatted\n"), 0o644))
		}).
		Return(nil).Once()

	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: base}, testhelper.NewTestLogger(false))
	require.NoError(t, staged.ReformatFile(ctx, foo))

	assert.NotEqual(t, foo, seen)
	assert.Equal(t, "Foo.java", filepath.Base(seen))
	assert.Equal(t, "1", filepath.Base(filepath.Dir(seen)))
	assert.Equal(t, "formatted\n", testhelper.ReadFile(t, foo))
	target.AssertExpectations(t)
}

func TestStagedFormatter_FailureLeavesOriginalsAlone(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := t.TempDir()
	foo := testhelper.WriteFile(t, dir, "Foo.java", "foo\n")
	formatterErr := errors.New("formatter crashed")

	target := &mocks.MockCodeFormatter{}
	target.On("ReformatFile", ctx, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(args.String(1), []byte("half written"), 0o644))
		}).
		Return(formatterErr).Once()

	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: base}, testhelper.NewTestLogger(false))

	assert.ErrorIs(t, staged.ReformatFile(ctx, foo), formatterErr)
	assert.Equal(t, "foo\n", testhelper.ReadFile(t, foo))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStagedFormatter_KeepsOriginalEditedWhileFormatting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := t.TempDir()
	foo := testhelper.WriteFile(t, dir, "Foo.java", "v1\n")

	target := &mocks.MockCodeFormatter{}
	target.On("ReformatFile", ctx, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(foo, []byte("v2 user edit\n"), 0o644))
			require.NoError(t, os.WriteFile(args.String(1), []byte("V1\n"), 0o644))
		}).
		Return(nil).Once()

	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: base}, testhelper.NewTestLogger(false))
	err := staged.ReformatFile(ctx, foo)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOriginalModified)
	var stagingErr *apperrors.StagingError
	require.True(t, errors.As(err, &stagingErr))
	assert.Equal(t, foo, stagingErr.Path)
	assert.Equal(t, "v2 user edit\n", testhelper.ReadFile(t, foo))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStagedFormatter_WritesBackUnaffectedFilesDespiteAnEditedOne(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	foo := testhelper.WriteFile(t, dir, "Foo.java", "foo\n")
	bar := testhelper.WriteFile(t, dir, "Bar.java", "bar\n")

	target := &mocks.MockCodeFormatter{}
	target.On("ReformatFiles", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			temps := args.Get(1).([]string)
			require.NoError(t, os.WriteFile(foo, []byte("foo edited\n"), 0o644))
			require.NoError(t, os.WriteFile(temps[0], []byte("FOO\n"), 0o644))
			require.NoError(t, os.WriteFile(temps[1], []byte("BAR\n"), 0o644))
		}).
		Return(nil).Once()

	log := testhelper.NewTestLogger(false)
	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: t.TempDir()}, log)
	err := staged.ReformatFiles(ctx, []string{foo, bar})

	assert.ErrorIs(t, err, apperrors.ErrOriginalModified)
	assert.Equal(t, "foo edited\n", testhelper.ReadFile(t, foo))
	assert.Equal(t, "BAR\n", testhelper.ReadFile(t, bar))
	require.Len(t, log.GetWarnMessages(), 1)
	assert.Equal(t, foo, log.GetWarnMessages()[0].Fields["file"])
}

func TestStagedFormatter_MissingFileFailsBeforeFormatting(t *testing.T) {
	target := &mocks.MockCodeFormatter{}
	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: t.TempDir()}, testhelper.NewTestLogger(false))

	err := staged.ReformatFile(context.Background(), filepath.Join(t.TempDir(), "Missing.java"))

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, target.Calls)
}

func TestStagedFormatter_PassesThroughDirectoriesAndCapabilities(t *testing.T) {
	ctx := context.Background()
	target := newMockFormatter()
	target.On("ReformatFilesInDirectory", ctx, "/src").Return(nil).Once()
	target.On("ReformatFilesInDirectoryRecursively", ctx, "/src").Return(nil).Once()

	staged := NewStagedFormatter(target, &tempfile.Config{BaseDir: t.TempDir()}, testhelper.NewTestLogger(false))

	require.NoError(t, staged.ReformatFilesInDirectory(ctx, "/src"))
	require.NoError(t, staged.ReformatFilesInDirectoryRecursively(ctx, "/src"))
	assert.Equal(t, CapabilitiesOf(target), CapabilitiesOf(staged))
	assert.True(t, staged.SupportsFileType(javaFile))
	target.AssertExpectations(t)
}
