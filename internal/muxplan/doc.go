// Package muxplan decides how ffmpeg must be driven to attach a subtitle
// stream without re-encoding anything.
//
// Build is a pure function from an attachment request and the container's
// existing subtitle count to an immutable, ordered list of typed directives
// (inputs, stream selection, metadata, codecs, output). Render is the
// separate serialization step that turns a Plan into ffmpeg's argument
// vector. Keeping the two apart lets the decision logic be tested without a
// muxer and lets `subattach plan` show the directives before anything runs.
package muxplan
