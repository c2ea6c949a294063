// Package protocol classifies the decoder's slave-mode output, one line at a time.
package protocol

// Event is a classified decoder line. The set is closed: every implementation lives here.
type Event interface {
	event()
}

// StatusTick carries the playback position of an audio status line.
type StatusTick struct {
	Seconds float64
}

// FrameTick is the status line of a video-only stream.
type FrameTick struct {
	Seconds float64
	Frame   int
}

// GeometryReport announces the video output. It only appears once frames are being produced.
type GeometryReport struct {
	Driver        string
	Width, Height int
}

// PausedToggle acknowledges a pause command.
type PausedToggle struct{}

// ConnectingNotice is printed when the decoder opens a network stream.
type ConnectingNotice struct{}

// CacheFillPercent reports prebuffering progress.
type CacheFillPercent struct {
	Percent float64
}

// IndexingPercent reports index generation progress.
type IndexingPercent struct {
	Percent int
}

// LengthReport is the stream length in seconds, zero for live streams.
type LengthReport struct {
	Seconds float64
}

// SeekableReport tells whether the stream accepts seek commands.
type SeekableReport struct {
	Seekable bool
}

// MetaKind is the kind of a clip info field.
type MetaKind int

const (
	MetaTitle MetaKind = iota
	MetaAuthor
	MetaCopyright
	MetaComment
)

func (k MetaKind) String() string {
	switch k {
	case MetaTitle:
		return "title"
	case MetaAuthor:
		return "author"
	case MetaCopyright:
		return "copyright"
	default:
		return "comment"
	}
}

// MetaField is one line of clip info.
type MetaField struct {
	Kind  MetaKind
	Value string
}

// NoVideoNotice means the stream has no video track.
type NoVideoNotice struct{}

// StartingNotice precedes playback. Audio-only streams never report geometry, so this is their start signal.
type StartingNotice struct{}

// CacheStarved is a diagnostic printed when the decoder runs out of data.
type CacheStarved struct{}

// EndOfFile means the decoder reached the end of the stream and is about to exit.
type EndOfFile struct{}

// ScreenshotSaved names the file the decoder wrote, relative to its working directory.
type ScreenshotSaved struct {
	Path string
}

// ScreenshotError means the decoder could not write a screenshot.
type ScreenshotError struct{}

// Unclassified is any other line. It is for display only.
type Unclassified struct {
	Text string
}

func (StatusTick) event()       {}
func (FrameTick) event()        {}
func (GeometryReport) event()   {}
func (PausedToggle) event()     {}
func (ConnectingNotice) event() {}
func (CacheFillPercent) event() {}
func (IndexingPercent) event()  {}
func (LengthReport) event()     {}
func (SeekableReport) event()   {}
func (MetaField) event()        {}
func (NoVideoNotice) event()    {}
func (StartingNotice) event()   {}
func (CacheStarved) event()     {}
func (EndOfFile) event()        {}
func (ScreenshotSaved) event()  {}
func (ScreenshotError) event()  {}
func (Unclassified) event()     {}
