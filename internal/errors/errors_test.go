package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStagingError_Unwrap(t *testing.T) {
	err := NewStagingError("/tmp/foo.txt", "failed to copy file", fs.ErrPermission)

	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, "failed to copy file: path=/tmp/foo.txt: permission denied", err.Error())
}

func TestFormatterError_IncludesOutput(t *testing.T) {
	cause := errors.New("exit status 2")
	err := NewFormatterError("Foo.java", "formatter failed", "syntax error at line 3", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "file=Foo.java")
	assert.Contains(t, err.Error(), "syntax error at line 3")

	var fe *FormatterError
	assert.True(t, errors.As(error(err), &fe))
	assert.Equal(t, "Foo.java", fe.File)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("files", ErrMsgNoFiles)
	assert.Equal(t, "files: At least one file is required", err.Error())
}
