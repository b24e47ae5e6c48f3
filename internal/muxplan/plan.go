package muxplan

import (
	"path/filepath"
	"strings"

	"subattach/internal/model"
)

const (
	// CodecCopy passes encoded packets through unchanged.
	CodecCopy = "copy"
	// CodecMovText is the only text subtitle codec the MP4 family accepts.
	CodecMovText = "mov_text"
)

// textSubtitleContainers need subtitles converted to mov_text; any other
// container gets the subtitle stream copied as-is.
var textSubtitleContainers = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
}

// SubtitleCodecFor returns the subtitle codec to use for an output path.
func SubtitleCodecFor(outputPath string) string {
	if textSubtitleContainers[strings.ToLower(filepath.Ext(outputPath))] {
		return CodecMovText
	}
	return CodecCopy
}

// TargetSubtitleIndex returns the position the attached subtitle occupies
// among subtitle-type output streams. Without clearing it is appended after
// the existing ones (index == existing). With clearing the index is
// existing-1, clamped at 0: clearing a container that has no subtitles is a
// no-op and must never yield a negative stream specifier.
func TargetSubtitleIndex(existing int, clear bool) int {
	if existing < 0 {
		existing = 0
	}
	idx := existing
	if clear {
		idx--
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// Plan is the immutable, ordered directive list for one muxer invocation.
type Plan struct {
	directives     []Directive
	subtitleIndex  int
	hasSubtitle    bool
	existingSubs   int
	clearRequested bool
}

// Directives returns a copy of the directive list in execution order.
func (p Plan) Directives() []Directive {
	out := make([]Directive, len(p.directives))
	copy(out, p.directives)
	return out
}

// Filter returns the directives of the given kind, in order.
func (p Plan) Filter(k Kind) []Directive {
	var out []Directive
	for _, d := range p.directives {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// SubtitleIndex returns the attached subtitle's output index and whether a
// subtitle is attached at all.
func (p Plan) SubtitleIndex() (int, bool) {
	return p.subtitleIndex, p.hasSubtitle
}

// ExistingSubtitles is the subtitle count the plan was built from.
func (p Plan) ExistingSubtitles() int { return p.existingSubs }

// ClearsSubtitles reports whether existing subtitle streams are dropped.
func (p Plan) ClearsSubtitles() bool { return p.clearRequested && p.hasSubtitle }

// OutputPath returns the muxer target.
func (p Plan) OutputPath() string {
	for i := len(p.directives) - 1; i >= 0; i-- {
		if p.directives[i].Kind == KindOutput {
			return p.directives[i].Path
		}
	}
	return ""
}

// Build derives the Plan for req given the number of subtitle streams the
// input already has. req.Output must be the muxer target (the temp sibling
// for in-place rewrites). Build is total: validation happens before it.
func Build(req model.AttachmentRequest, existingSubtitles int) Plan {
	if existingSubtitles < 0 {
		existingSubtitles = 0
	}
	attach := req.HasSubtitle()
	p := Plan{
		existingSubs:   existingSubtitles,
		hasSubtitle:    attach,
		clearRequested: req.ClearExistingSubtitles,
	}
	add := func(d Directive) { p.directives = append(p.directives, d) }

	// Inputs: 0 is the container, 1 the subtitle.
	add(Directive{Kind: KindInput, Path: req.Input})
	if attach {
		add(Directive{Kind: KindInput, Path: req.Subtitle})
	}

	// Stream selection.
	add(Directive{Kind: KindSelect, Input: 0, Class: ClassAll})
	if attach {
		if req.ClearExistingSubtitles {
			add(Directive{Kind: KindExclude, Input: 0, Class: ClassSubtitle})
		}
		add(Directive{Kind: KindSelect, Input: 1, Class: ClassAll})
	}

	// Language of the new subtitle stream.
	if attach {
		p.subtitleIndex = TargetSubtitleIndex(existingSubtitles, req.ClearExistingSubtitles)
		add(Directive{
			Kind:  KindMetadata,
			Scope: StreamScope(ClassSubtitle, p.subtitleIndex),
			Key:   "language",
			Value: req.Language,
		})
	}

	// Global metadata of the container survives the remux.
	add(Directive{Kind: KindMetadataCopy, Input: 0})

	if req.AddMetadata {
		for _, s := range []Scope{
			FileScope(),
			ClassScope(ClassVideo),
			ClassScope(ClassAudio),
			ClassScope(ClassSubtitle),
		} {
			add(Directive{Kind: KindMetadata, Scope: s, Key: "title", Value: req.MetadataTitle})
		}
	}

	// Codecs: copy everything, then pin per-class policy. The catch-all keeps
	// streams without a class directive (data, attachments, existing
	// subtitles in metadata-only runs) from being re-encoded.
	add(Directive{Kind: KindCodec, Class: ClassAll, Codec: CodecCopy})
	add(Directive{Kind: KindCodec, Class: ClassVideo, Codec: CodecCopy})
	add(Directive{Kind: KindCodec, Class: ClassAudio, Codec: CodecCopy})
	if attach {
		add(Directive{Kind: KindCodec, Class: ClassSubtitle, Codec: SubtitleCodecFor(req.Output)})
	}

	add(Directive{Kind: KindOutput, Path: req.Output})
	return p
}
