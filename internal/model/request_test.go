package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAttachmentRequest_Normalize(t *testing.T) {
	r := AttachmentRequest{Input: " movie.mkv ", AddMetadata: true}.Normalize()
	if r.Input != "movie.mkv" {
		t.Errorf("Input = %q, want trimmed", r.Input)
	}
	if r.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", r.Language, DefaultLanguage)
	}
	if r.MetadataTitle != DefaultMetadataTitle {
		t.Errorf("MetadataTitle = %q, want %q", r.MetadataTitle, DefaultMetadataTitle)
	}

	r2 := AttachmentRequest{Input: "a.mp4", Language: "spa", AddMetadata: true, MetadataTitle: "Mine"}.Normalize()
	if r2.Language != "spa" || r2.MetadataTitle != "Mine" {
		t.Errorf("explicit values overwritten: %+v", r2)
	}

	r3 := AttachmentRequest{Input: "a.mp4"}.Normalize()
	if r3.MetadataTitle != "" {
		t.Errorf("MetadataTitle = %q, want empty when metadata disabled", r3.MetadataTitle)
	}
}

func TestAttachmentRequest_Validate(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	sub := filepath.Join(dir, "movie.srt")
	for _, p := range []string{video, sub} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		req       AttachmentRequest
		wantErr   bool
		wantField string
	}{
		{name: "subtitle attach", req: AttachmentRequest{Input: video, Subtitle: sub}},
		{name: "metadata only", req: AttachmentRequest{Input: video, AddMetadata: true}},
		{name: "missing input flag", req: AttachmentRequest{Subtitle: sub}, wantErr: true, wantField: "input"},
		{name: "no intent", req: AttachmentRequest{Input: video}, wantErr: true},
		{name: "input missing on disk", req: AttachmentRequest{Input: filepath.Join(dir, "nope.mkv"), Subtitle: sub}, wantErr: true, wantField: "input"},
		{name: "subtitle missing on disk", req: AttachmentRequest{Input: video, Subtitle: filepath.Join(dir, "nope.srt")}, wantErr: true, wantField: "subtitle"},
		{name: "input is directory", req: AttachmentRequest{Input: dir, AddMetadata: true}, wantErr: true, wantField: "input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("errors.Is(err, ErrValidation) = false for %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error is not *ValidationError: %T", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}
