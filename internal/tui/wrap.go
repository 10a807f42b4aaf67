package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes lays out the target words. Committed words compare
// against what was typed for them, the current word against the live input.
func buildStyledRunes(words, typed []string, current int, input string) []styledRune {
	out := make([]styledRune, 0, len(words)*6)
	for i, word := range words {
		if i > 0 {
			out = append(out, styledRune{s: pendingStyle.Render(" "), width: 1, isSpace: true})
		}
		active := i == current
		committed := i < len(typed)
		var attempt []rune
		switch {
		case committed:
			attempt = []rune(typed[i])
		case active:
			attempt = []rune(input)
		}
		target := []rune(word)
		for j, r := range target {
			style := pendingStyle
			switch {
			case j < len(attempt) && attempt[j] == r:
				style = correctStyle
			case j < len(attempt), committed:
				style = incorrectStyle
			case active:
				style = currentWordStyle
			}
			if active && j == len(attempt) {
				style = style.Underline(true)
			}
			out = append(out, styledRune{s: style.Render(string(r)), width: runewidth.RuneWidth(r)})
		}
		for _, r := range attemptExtra(attempt, len(target)) {
			out = append(out, styledRune{s: extraStyle.Render(string(r)), width: runewidth.RuneWidth(r)})
		}
	}
	return out
}

func attemptExtra(attempt []rune, targetLen int) []rune {
	if len(attempt) <= targetLen {
		return nil
	}
	return attempt[targetLen:]
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
