package muxplan

import (
	"fmt"
	"strconv"
)

// Kind classifies a directive.
type Kind int

const (
	KindInput        Kind = iota // -i <path>
	KindSelect                   // -map <input>[:<class>]
	KindExclude                  // -map -<input>:<class>
	KindMetadataCopy             // -map_metadata <input>
	KindMetadata                 // -metadata[:s:<class>[:<n>]] key=value
	KindCodec                    // -c[:<class>] <codec>
	KindOutput                   // <path>
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSelect:
		return "select"
	case KindExclude:
		return "exclude"
	case KindMetadataCopy:
		return "metadata-copy"
	case KindMetadata:
		return "metadata"
	case KindCodec:
		return "codec"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// StreamClass is ffmpeg's stream type specifier.
type StreamClass string

const (
	ClassAll      StreamClass = ""
	ClassVideo    StreamClass = "v"
	ClassAudio    StreamClass = "a"
	ClassSubtitle StreamClass = "s"
)

func (c StreamClass) String() string {
	switch c {
	case ClassVideo:
		return "video"
	case ClassAudio:
		return "audio"
	case ClassSubtitle:
		return "subtitle"
	default:
		return "all"
	}
}

// AllStreams as a Scope index addresses every output stream of the class.
const AllStreams = -1

// Scope is the level a metadata key applies to: the whole file (Class empty)
// or output streams of one class, either all of them or the Index-th.
type Scope struct {
	Class StreamClass
	Index int
}

// FileScope addresses file-level (global) metadata.
func FileScope() Scope { return Scope{Class: ClassAll, Index: AllStreams} }

// ClassScope addresses every output stream of class c.
func ClassScope(c StreamClass) Scope { return Scope{Class: c, Index: AllStreams} }

// StreamScope addresses the n-th output stream of class c.
func StreamScope(c StreamClass, n int) Scope { return Scope{Class: c, Index: n} }

// IsFile reports whether the scope is file-level.
func (s Scope) IsFile() bool { return s.Class == ClassAll }

// specifier renders the option suffix, e.g. "" or ":s:v" or ":s:s:2".
func (s Scope) specifier() string {
	if s.IsFile() {
		return ""
	}
	if s.Index < 0 {
		return ":s:" + string(s.Class)
	}
	return ":s:" + string(s.Class) + ":" + strconv.Itoa(s.Index)
}

func (s Scope) String() string {
	switch {
	case s.IsFile():
		return "file"
	case s.Index < 0:
		return "all " + s.Class.String()
	default:
		return fmt.Sprintf("%s #%d", s.Class, s.Index)
	}
}

// Directive is one instruction to the muxer. Only the fields relevant to
// Kind are set.
type Directive struct {
	Kind  Kind
	Input int         // KindSelect, KindExclude, KindMetadataCopy
	Path  string      // KindInput, KindOutput
	Class StreamClass // KindSelect, KindExclude, KindCodec
	Scope Scope       // KindMetadata
	Key   string      // KindMetadata
	Value string      // KindMetadata
	Codec string      // KindCodec
}

// Args serializes the directive into ffmpeg arguments.
func (d Directive) Args() []string {
	switch d.Kind {
	case KindInput:
		return []string{"-i", d.Path}
	case KindSelect:
		return []string{"-map", streamSpec(d.Input, d.Class)}
	case KindExclude:
		return []string{"-map", "-" + streamSpec(d.Input, d.Class)}
	case KindMetadataCopy:
		return []string{"-map_metadata", strconv.Itoa(d.Input)}
	case KindMetadata:
		return []string{"-metadata" + d.Scope.specifier(), d.Key + "=" + d.Value}
	case KindCodec:
		opt := "-c"
		if d.Class != ClassAll {
			opt += ":" + string(d.Class)
		}
		return []string{opt, d.Codec}
	case KindOutput:
		return []string{d.Path}
	default:
		return nil
	}
}

// Describe returns a short human-readable summary for plan listings.
func (d Directive) Describe() string {
	switch d.Kind {
	case KindInput:
		return d.Path
	case KindSelect:
		return fmt.Sprintf("include %s streams of input %d", d.Class, d.Input)
	case KindExclude:
		return fmt.Sprintf("drop %s streams of input %d", d.Class, d.Input)
	case KindMetadataCopy:
		return fmt.Sprintf("copy global metadata from input %d", d.Input)
	case KindMetadata:
		return fmt.Sprintf("%s: %s=%s", d.Scope, d.Key, d.Value)
	case KindCodec:
		return fmt.Sprintf("%s -> %s", d.Class, d.Codec)
	case KindOutput:
		return d.Path
	default:
		return ""
	}
}

func streamSpec(input int, c StreamClass) string {
	if c == ClassAll {
		return strconv.Itoa(input)
	}
	return strconv.Itoa(input) + ":" + string(c)
}
