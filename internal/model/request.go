package model

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultLanguage is applied to the attached subtitle when no language is given.
	DefaultLanguage = "eng"
	// DefaultMetadataTitle is stamped when metadata mode is enabled without a value.
	DefaultMetadataTitle = "ro-ox.com"
)

// AttachmentRequest is the immutable intent for one attach operation.
type AttachmentRequest struct {
	Input                  string // Source container; must exist.
	Subtitle               string // Subtitle file to attach; empty = metadata-only.
	Output                 string // Destination; empty = rewrite Input via a temp sibling.
	ClearExistingSubtitles bool
	Language               string // Applied only when Subtitle is set.
	AddMetadata            bool
	MetadataTitle          string // Title stamped on file, video, audio and subtitle scopes.
}

// HasSubtitle reports whether the request attaches a subtitle stream.
func (r AttachmentRequest) HasSubtitle() bool {
	return strings.TrimSpace(r.Subtitle) != ""
}

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("invalid request")

// ValidationError reports a request that was rejected before any external tool ran.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Normalize fills defaults and trims path whitespace. It does not touch the filesystem.
func (r AttachmentRequest) Normalize() AttachmentRequest {
	r.Input = strings.TrimSpace(r.Input)
	r.Subtitle = strings.TrimSpace(r.Subtitle)
	r.Output = strings.TrimSpace(r.Output)
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	if r.AddMetadata && strings.TrimSpace(r.MetadataTitle) == "" {
		r.MetadataTitle = DefaultMetadataTitle
	}
	return r
}

// Validate checks intent and that the referenced files exist.
func (r AttachmentRequest) Validate() error {
	if r.Input == "" {
		return &ValidationError{Field: "input", Reason: "input file is required"}
	}
	if !r.HasSubtitle() && !r.AddMetadata {
		return &ValidationError{Reason: "nothing to do: pass a subtitle file (-s) or enable metadata mode (-m)"}
	}
	if err := requireFile(r.Input); err != nil {
		return &ValidationError{Field: "input", Reason: err.Error()}
	}
	if r.HasSubtitle() {
		if err := requireFile(r.Subtitle); err != nil {
			return &ValidationError{Field: "subtitle", Reason: err.Error()}
		}
	}
	return nil
}

func requireFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("cannot access %s: %v", path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("is a directory: %s", path)
	}
	return nil
}

// CLIOptions holds runtime options resolved from flags, env and config.
type CLIOptions struct {
	FFmpegBinary  string // Optional explicit ffmpeg path
	FFprobeBinary string // Optional explicit ffprobe path
	DryRun        bool
	Verbose       bool
	NoUI          bool // Disable TUI when true
}

// AttachResult captures the outcome of a completed attach run.
type AttachResult struct {
	OutputPath string // Final file: the explicit output, or Input after replacement.
	TempPath   string // Temp sibling used as the muxer target, if any.
	Bytes      int64
	Replaced   bool // Input was overwritten by the temp output.
}
