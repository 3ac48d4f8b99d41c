package header

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// BackupSuffix is appended to a file's path to name its temporary backup.
const BackupSuffix = ".bak"

// Result describes one header replacement.
type Result struct {
	// Replaced holds the header block that was removed, empty if none.
	Replaced []byte
	// Output is the full new content: header, blank line, original body.
	Output []byte
	// Changed is false when Output equals the original content.
	Changed bool
}

// Splice replaces the leading header of content with rendered.
// The body after the old header is carried over byte for byte.
func Splice(content []byte, s Style, rendered string) Result {
	cursor := NewCursor(content)
	replaced := Skip(cursor, s)
	rest := cursor.Rest()

	output := make([]byte, 0, len(rendered)+1+len(rest))
	output = append(output, rendered...)
	output = append(output, '\n')
	output = append(output, rest...)

	return Result{
		Replaced: replaced,
		Output:   output,
		Changed:  !bytes.Equal(output, content),
	}
}

// Options tunes Rewrite.
type Options struct {
	// SkipUnchanged leaves a file untouched (no backup, no write) when it
	// already carries the rendered header.
	SkipUnchanged bool
}

// Rewrite replaces the leading header of the file at path in place.
//
// The file is first copied to path+BackupSuffix, the copy is read back and
// the original is truncated and rewritten. The backup is removed on success.
// If writing fails after truncation, the backup is left behind so the
// original content can be recovered by hand.
func Rewrite(path string, s Style, rendered string, opts Options) (Result, error) {
	if opts.SkipUnchanged {
		content, err := os.ReadFile(path)
		if err != nil {
			return Result{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if result := Splice(content, s, rendered); !result.Changed {
			return result, nil
		}
	}

	backupPath := path + BackupSuffix
	if err := copyFile(path, backupPath); err != nil {
		return Result{}, err
	}

	content, err := os.ReadFile(backupPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading backup %s: %w", backupPath, err)
	}
	result := Splice(content, s, rendered)

	// O_TRUNC without O_CREATE keeps the existing inode and permissions.
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s for writing: %w", path, err)
	}
	writer := bufio.NewWriter(out)
	if _, err := writer.Write(result.Output); err != nil {
		out.Close()
		return Result{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := writer.Flush(); err != nil {
		out.Close()
		return Result{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return Result{}, fmt.Errorf("closing %s: %w", path, err)
	}

	if err := os.Remove(backupPath); err != nil {
		return Result{}, fmt.Errorf("removing backup %s: %w", backupPath, err)
	}
	return result, nil
}

// copyFile duplicates src to dst with the same permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating backup %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing backup %s: %w", dst, err)
	}
	return nil
}
