package testhelper

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// WriteFile creates name under dir with the given contents and returns its path
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the contents of path as a string
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// UpperCaseFormatter writes a shell script that upper-cases every file given
// as an argument in place. Directory arguments format the files directly
// inside them, or the whole tree when preceded by -r. Files containing
// "FAIL" make the script print to stderr and exit with status 3. Tests using it are
// skipped where /bin/sh is unavailable.
func UpperCaseFormatter(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("formatter script needs a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("formatter script needs /bin/sh")
	}

	script := `#!/bin/sh
recursive=0
if [ "$1" = "-r" ]; then
  recursive=1
  shift
fi
format_file() {
  if grep -q FAIL "$1"; then
    echo "cannot format $1" >&2
    return 1
  fi
  tr '[:lower:]' '[:upper:]' < "$1" > "$1.fmt" && mv "$1.fmt" "$1"
}
for f in "$@"; do
  if [ -d "$f" ]; then
    if [ "$recursive" = 1 ]; then
      files=$(find "$f" -type f)
    else
      files=$(find "$f" -maxdepth 1 -type f)
    fi
    for g in $files; do
      format_file "$g" || exit 3
    done
  else
    format_file "$f" || exit 3
  fi
done
`
	path := filepath.Join(t.TempDir(), "upper.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write formatter script: %v", err)
	}
	return path
}
