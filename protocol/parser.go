package protocol

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Rule turns a line matching Pattern into an event. Build receives the submatches.
type Rule struct {
	Pattern *regexp.Regexp
	Build   func(m []string) Event
}

// Contains is a rule matched anywhere in the line.
type Contains struct {
	Needle string
	Build  func(line string) Event
}

// Parser classifies decoder output lines. It is stateless and safe for concurrent use.
type Parser struct {
	ticks    []Rule
	rules    []Rule
	contains []Contains
}

var (
	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

	tickRules = []Rule{
		{regexp.MustCompile(`^A:\s*(-?[\d.]+)`), func(m []string) Event {
			return StatusTick{Seconds: toFloat(m[1], 0)}
		}},
		{regexp.MustCompile(`^V:\s*(-?[\d.]+)\s+(\d+)/`), func(m []string) Event {
			return FrameTick{Seconds: toFloat(m[1], 0), Frame: toInt(m[2], 0)}
		}},
	}

	lineRules = []Rule{
		{regexp.MustCompile(`^VO: \[([^\]]*)\] \d+x\d+ => (\d+)x(\d+)`), func(m []string) Event {
			return GeometryReport{Driver: m[1], Width: toInt(m[2], 0), Height: toInt(m[3], 0)}
		}},
		{regexp.MustCompile(`^\s*=+\s*PAUSE\s*=+`), func([]string) Event {
			return PausedToggle{}
		}},
		{regexp.MustCompile(`^Connecting to server`), func([]string) Event {
			return ConnectingNotice{}
		}},
		{regexp.MustCompile(`^Cache fill:\s*(-?[\d.]+)%`), func(m []string) Event {
			return CacheFillPercent{Percent: toFloat(m[1], 0)}
		}},
		{regexp.MustCompile(`^Generating Index:\s*(\d+)\s*%`), func(m []string) Event {
			return IndexingPercent{Percent: toInt(m[1], 0)}
		}},
		{regexp.MustCompile(`^ID_LENGTH=(.*)$`), func(m []string) Event {
			return LengthReport{Seconds: toFloat(m[1], -1)}
		}},
		{regexp.MustCompile(`^ID_SEEKABLE=(.*)$`), func(m []string) Event {
			return SeekableReport{Seekable: toInt(m[1], 0) != 0}
		}},
		{regexp.MustCompile(`^(?i)\s+(name|title):\s?(.*)$`), meta(MetaTitle)},
		{regexp.MustCompile(`^(?i)\s+(author|artist):\s?(.*)$`), meta(MetaAuthor)},
		{regexp.MustCompile(`^(?i)\s+(copyright):\s?(.*)$`), meta(MetaCopyright)},
		{regexp.MustCompile(`^(?i)\s+(comments?):\s?(.*)$`), meta(MetaComment)},
		{regexp.MustCompile(`^Video: no video`), func([]string) Event {
			return NoVideoNotice{}
		}},
		{regexp.MustCompile(`^Starting playback`), func([]string) Event {
			return StartingNotice{}
		}},
		{regexp.MustCompile(`^Cache empty`), func([]string) Event {
			return CacheStarved{}
		}},
		{regexp.MustCompile(`^(?:Exiting\.\.\. \(End of file\)|ID_EXIT=EOF)`), func([]string) Event {
			return EndOfFile{}
		}},
		{regexp.MustCompile(`^\*\*\* screenshot '(.+)' \*\*\*`), func(m []string) Event {
			return ScreenshotSaved{Path: m[1]}
		}},
		{regexp.MustCompile(`^(?:Failed to open|Error opening) .+ for writing`), func([]string) Event {
			return ScreenshotError{}
		}},
	}

	containsRules = []Contains{
		{"bits overconsumption", func(string) Event { return CacheStarved{} }},
	}
)

func meta(kind MetaKind) func(m []string) Event {
	return func(m []string) Event {
		return MetaField{Kind: kind, Value: strings.TrimSpace(m[2])}
	}
}

func toFloat(s string, def float64) float64 {
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return f
}

func toInt(s string, def int) int {
	n, err := cast.ToIntE(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// New returns a parser for MPlayer slave-mode output. Extra rules are tried after the built-in ones.
func New(extra ...Rule) *Parser {
	rules := make([]Rule, 0, len(lineRules)+len(extra))
	rules = append(rules, lineRules...)
	rules = append(rules, extra...)

	return &Parser{
		ticks:    tickRules,
		rules:    rules,
		contains: containsRules,
	}
}

// Parse classifies one line. Status lines are dropped while stopped, since they are leftovers of
// a process that is still draining. Blank lines yield nil; lines no rule claims yield Unclassified.
func (p *Parser) Parse(line string, stopped bool) Event {
	line = ansiEscape.ReplaceAllString(line, "")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	for _, r := range p.ticks {
		if m := r.Pattern.FindStringSubmatch(line); m != nil {
			if stopped {
				return nil
			}
			return r.Build(m)
		}
	}

	for _, r := range p.rules {
		if m := r.Pattern.FindStringSubmatch(line); m != nil {
			return r.Build(m)
		}
	}

	for _, c := range p.contains {
		if strings.Contains(line, c.Needle) {
			return c.Build(line)
		}
	}

	return Unclassified{Text: line}
}
