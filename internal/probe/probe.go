// Package probe counts the subtitle streams already present in a container.
//
// Probing never fails the caller: when ffprobe is missing, produces no
// output, or produces something other than JSON, the inspection reports zero
// subtitle streams together with a warning error (ErrProbeUnavailable or
// ErrProbeParse). The muxer's own exit status is the authoritative failure
// signal later in the run.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"subattach/internal/util"
)

var (
	// ErrProbeUnavailable means ffprobe produced no output (missing file,
	// missing tool, permission error).
	ErrProbeUnavailable = errors.New("ffprobe produced no output")
	// ErrProbeParse means ffprobe output could not be decoded as JSON.
	ErrProbeParse = errors.New("ffprobe output is not valid JSON")
)

// SubtitleStream is one existing subtitle stream of the container.
type SubtitleStream struct {
	Index    int // Absolute stream index within the container
	Codec    string
	Language string
}

// Inspection is the result of one subtitle probe. It is derived fresh per
// run and goes stale as soon as the container is rewritten.
type Inspection struct {
	Streams     []SubtitleStream
	DurationSec float64 // 0 when unknown; only used for progress percentages
}

// Count returns the number of subtitle streams.
func (i Inspection) Count() int {
	return len(i.Streams)
}

// Inspector runs ffprobe through a CmdRunner.
type Inspector struct {
	binary string
	runner util.CmdRunner
}

// NewInspector constructs an Inspector. An empty binary defaults to "ffprobe";
// a nil runner defaults to the exec-backed runner.
func NewInspector(binary string, runner util.CmdRunner) *Inspector {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	return &Inspector{binary: binary, runner: runner}
}

// Args returns the ffprobe argument vector used to inspect path.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "s",
		"-show_entries", "stream=index,codec_name:stream_tags=language:format=duration",
		"-of", "json",
		"--", path,
	}
}

// CountSubtitleStreams probes path for subtitle streams. The returned
// Inspection is always usable; a non-nil error is a degradation warning
// wrapping ErrProbeUnavailable or ErrProbeParse, never a reason to abort.
func (in *Inspector) CountSubtitleStreams(ctx context.Context, path string) (Inspection, error) {
	res, runErr := in.runner.Run(ctx, util.CmdSpec{
		Path:          in.binary,
		Args:          Args(path),
		CaptureStdout: true,
	})
	out := bytes.TrimSpace(res.Stdout)
	if len(out) == 0 {
		detail := strings.TrimSpace(string(res.Stderr))
		switch {
		case runErr != nil && detail != "":
			return Inspection{}, fmt.Errorf("%w: %v: %s", ErrProbeUnavailable, runErr, detail)
		case runErr != nil:
			return Inspection{}, fmt.Errorf("%w: %v", ErrProbeUnavailable, runErr)
		default:
			return Inspection{}, ErrProbeUnavailable
		}
	}
	return ParseJSON(out)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type ffprobeStream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	Tags      map[string]string `json:"tags"`
}

// ParseJSON decodes ffprobe JSON output. A document without a streams list
// is a valid container with no subtitles.
func ParseJSON(data []byte) (Inspection, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Inspection{}, fmt.Errorf("%w: %v", ErrProbeParse, err)
	}
	insp := Inspection{DurationSec: parseFloat(raw.Format.Duration)}
	for _, s := range raw.Streams {
		insp.Streams = append(insp.Streams, SubtitleStream{
			Index:    s.Index,
			Codec:    s.CodecName,
			Language: s.Tags["language"],
		})
	}
	return insp, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
