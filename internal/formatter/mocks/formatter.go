package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCodeFormatter is a mock implementation of formatter.CodeFormatter
type MockCodeFormatter struct {
	mock.Mock
}

func (m *MockCodeFormatter) ReformatFile(ctx context.Context, file string) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockCodeFormatter) ReformatFiles(ctx context.Context, files []string) error {
	args := m.Called(ctx, files)
	return args.Error(0)
}

func (m *MockCodeFormatter) ReformatFilesInDirectory(ctx context.Context, directory string) error {
	args := m.Called(ctx, directory)
	return args.Error(0)
}

func (m *MockCodeFormatter) ReformatFilesInDirectoryRecursively(ctx context.Context, directory string) error {
	args := m.Called(ctx, directory)
	return args.Error(0)
}

func (m *MockCodeFormatter) SupportsFileType(file string) bool {
	args := m.Called(file)
	return args.Bool(0)
}

func (m *MockCodeFormatter) SupportsReformatFile() bool {
	return m.Called().Bool(0)
}

func (m *MockCodeFormatter) SupportsReformatFiles() bool {
	return m.Called().Bool(0)
}

func (m *MockCodeFormatter) SupportsReformatFilesInDirectory() bool {
	return m.Called().Bool(0)
}

func (m *MockCodeFormatter) SupportsReformatFilesInDirectoryRecursively() bool {
	return m.Called().Bool(0)
}
