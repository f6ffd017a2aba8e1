package formatter

import (
	"context"
	"fmt"
	"strings"
)

// Command is a formatter operation captured for later execution
type Command interface {
	Execute(ctx context.Context, formatter CodeFormatter) error
	String() string
}

// ReformatFileCommand reformats a single file
type ReformatFileCommand struct {
	File string
}

func (c ReformatFileCommand) Execute(ctx context.Context, formatter CodeFormatter) error {
	return formatter.ReformatFile(ctx, c.File)
}

func (c ReformatFileCommand) String() string {
	return "reformat file " + c.File
}

// ReformatFilesCommand reformats a batch of files in one formatter call
type ReformatFilesCommand struct {
	Files []string
}

func (c ReformatFilesCommand) Execute(ctx context.Context, formatter CodeFormatter) error {
	return formatter.ReformatFiles(ctx, c.Files)
}

func (c ReformatFilesCommand) String() string {
	return "reformat files " + strings.Join(c.Files, ", ")
}

// ReformatDirectoryCommand reformats the files of a directory, optionally
// descending into subdirectories
type ReformatDirectoryCommand struct {
	Directory string
	Recursive bool
}

func (c ReformatDirectoryCommand) Execute(ctx context.Context, formatter CodeFormatter) error {
	if c.Recursive {
		return formatter.ReformatFilesInDirectoryRecursively(ctx, c.Directory)
	}
	return formatter.ReformatFilesInDirectory(ctx, c.Directory)
}

func (c ReformatDirectoryCommand) String() string {
	if c.Recursive {
		return fmt.Sprintf("reformat directory %s recursively", c.Directory)
	}
	return "reformat directory " + c.Directory
}
