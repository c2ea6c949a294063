// Package util holds small helpers shared by the other packages.
package util

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/relayplay/relayplay/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

var (
	unsafeChars    = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]`)
	repeatedUnders = regexp.MustCompile(`__+`)
	edgeSeparators = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename makes name usable as a file name on every platform.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = repeatedUnders.ReplaceAllString(name, "_")
	return edgeSeparators.ReplaceAllString(name, "")
}

// Quantify formats count followed by the matching noun form.
func Quantify(count int, singular, plural string) string {
	noun := plural
	if count == 1 {
		noun = singular
	}
	return fmt.Sprintf("%d %s", count, noun)
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ReGroups returns the named groups of the first match of pattern, or nil without a match.
func ReGroups(pattern *regexp.Regexp, s string) map[string]string {
	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return nil
	}

	groups := make(map[string]string)
	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

// FormatElapsed renders seconds as H:MM:SS, or MM:SS under an hour. Negative input renders as zero.
func FormatElapsed(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	d := time.Duration(seconds) * time.Second
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// PrintErasable prints msg on the current line. The returned func blanks it again.
func PrintErasable(msg string) (erase func()) {
	fmt.Print("\r" + msg)
	return func() {
		fmt.Print("\r" + strings.Repeat(" ", len(msg)) + "\r")
	}
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Delete removes path and everything below it. A missing path is not an error.
func Delete(path string) error {
	return filesystem.API().RemoveAll(path)
}
