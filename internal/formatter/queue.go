package formatter

import (
	"context"
	"fmt"
)

// Queue defers formatter operations until Flush. Capability queries go
// straight to the wrapped formatter. A Queue is not safe for concurrent use.
type Queue struct {
	formatter CodeFormatter
	commands  []Command
	logger    Logger
}

var _ CodeFormatter = (*Queue)(nil)

// NewQueue creates an empty queue in front of formatter
func NewQueue(formatter CodeFormatter, logger Logger) *Queue {
	return &Queue{
		formatter: formatter,
		logger:    logger,
	}
}

// Enqueue appends cmd to the queue
func (q *Queue) Enqueue(cmd Command) {
	q.commands = append(q.commands, cmd)
}

// Len returns the number of commands waiting for Flush
func (q *Queue) Len() int {
	return len(q.commands)
}

// ReformatFile queues a reformat of file. It never fails.
func (q *Queue) ReformatFile(_ context.Context, file string) error {
	q.Enqueue(ReformatFileCommand{File: file})
	return nil
}

// ReformatFiles queues a single batch reformat of files
func (q *Queue) ReformatFiles(_ context.Context, files []string) error {
	q.Enqueue(ReformatFilesCommand{Files: append([]string(nil), files...)})
	return nil
}

// ReformatFilesInDirectory queues a reformat of the files in directory
func (q *Queue) ReformatFilesInDirectory(_ context.Context, directory string) error {
	q.Enqueue(ReformatDirectoryCommand{Directory: directory})
	return nil
}

// ReformatFilesInDirectoryRecursively queues a reformat of the directory tree
func (q *Queue) ReformatFilesInDirectoryRecursively(_ context.Context, directory string) error {
	q.Enqueue(ReformatDirectoryCommand{Directory: directory, Recursive: true})
	return nil
}

// Flush executes the queued commands in the order they were queued, each
// exactly once, and empties the queue. It stops at the first failing command
// and returns its error; the failed command is dropped and the commands after
// it stay queued for the next Flush.
func (q *Queue) Flush(ctx context.Context) error {
	if len(q.commands) == 0 {
		return nil
	}

	pending := q.commands
	q.commands = nil

	q.logger.LogDebug("Flushing formatter queue", map[string]interface{}{
		"commands": len(pending),
	})

	for i, cmd := range pending {
		if err := ctx.Err(); err != nil {
			q.requeue(pending[i:])
			return err
		}
		if err := cmd.Execute(ctx, q.formatter); err != nil {
			q.requeue(pending[i+1:])
			q.logger.LogError(err, fmt.Sprintf("Queued command failed: %s", cmd))
			return fmt.Errorf("%s: %w", cmd, err)
		}
	}

	q.logger.LogInfo("Flushed formatter queue", map[string]interface{}{
		"commands": len(pending),
	})
	return nil
}

// requeue puts rest back in front of anything queued while flushing
func (q *Queue) requeue(rest []Command) {
	if len(rest) == 0 {
		return
	}
	q.commands = append(append([]Command(nil), rest...), q.commands...)
}

func (q *Queue) SupportsFileType(file string) bool {
	return q.formatter.SupportsFileType(file)
}

func (q *Queue) SupportsReformatFile() bool {
	return q.formatter.SupportsReformatFile()
}

func (q *Queue) SupportsReformatFiles() bool {
	return q.formatter.SupportsReformatFiles()
}

func (q *Queue) SupportsReformatFilesInDirectory() bool {
	return q.formatter.SupportsReformatFilesInDirectory()
}

func (q *Queue) SupportsReformatFilesInDirectoryRecursively() bool {
	return q.formatter.SupportsReformatFilesInDirectoryRecursively()
}
