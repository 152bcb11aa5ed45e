package format

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type matchResult int

const (
	noMatch matchResult = iota
	emitBlock
	suppressLine
)

// lineContext is what a matcher sees: the current line and, for table
// header detection, the following line. The following line is never
// consumed by a matcher.
type lineContext struct {
	line    string
	next    string
	hasNext bool
}

type lineMatcher func(lc lineContext) (Block, matchResult)

// Order is precedence: the first matcher that does not return noMatch wins.
var lineMatchers = []lineMatcher{
	matchHeading3,
	matchHeading2,
	matchOrderedItem,
	matchBulletItem,
	matchTableLine,
	matchBlank,
}

// Parse converts text into blocks in a single forward pass. It never fails:
// anything unrecognised becomes a paragraph. Empty input yields no blocks.
func Parse(text string) []Block {
	if text == "" {
		return []Block{}
	}

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	blocks := make([]Block, 0, len(lines))
	for i, line := range lines {
		lc := lineContext{line: line}
		if i+1 < len(lines) {
			lc.next = lines[i+1]
			lc.hasNext = true
		}
		block, ok := classify(lc)
		if ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func classify(lc lineContext) (Block, bool) {
	for _, match := range lineMatchers {
		block, result := match(lc)
		switch result {
		case emitBlock:
			return block, true
		case suppressLine:
			return Block{}, false
		}
	}
	return Paragraph(ParseInline(lc.line)), true
}

func matchHeading3(lc lineContext) (Block, matchResult) {
	if rest, ok := strings.CutPrefix(lc.line, "### "); ok {
		return Heading(3, rest), emitBlock
	}
	return Block{}, noMatch
}

func matchHeading2(lc lineContext) (Block, matchResult) {
	if rest, ok := strings.CutPrefix(lc.line, "## "); ok {
		return Heading(2, rest), emitBlock
	}
	return Block{}, noMatch
}

// matchOrderedItem recognises "<digits>.<whitespace><rest>". The number is
// taken as written; sequence continuity is not checked.
func matchOrderedItem(lc lineContext) (Block, matchResult) {
	line := lc.line
	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits >= len(line) || line[digits] != '.' {
		return Block{}, noMatch
	}
	sep, size := utf8.DecodeRuneInString(line[digits+1:])
	if size == 0 || !isSpace(sep) {
		return Block{}, noMatch
	}
	label := line[:digits]
	index, err := strconv.Atoi(label)
	if err != nil {
		return Block{}, noMatch
	}
	return OrderedItem(index, label, ParseInline(line[digits+1+size:])), emitBlock
}

func matchBulletItem(lc lineContext) (Block, matchResult) {
	trimmed := strings.TrimSpace(lc.line)
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return BulletItem(ParseInline(trimmed[2:])), emitBlock
	}
	return Block{}, noMatch
}

func matchTableLine(lc lineContext) (Block, matchResult) {
	if !strings.Contains(lc.line, "|") {
		return Block{}, noMatch
	}
	if isTableSeparator(lc.line) {
		return Block{}, suppressLine
	}
	header := lc.hasNext && isTableSeparator(lc.next)
	return TableRow(splitCells(lc.line), header), emitBlock
}

func matchBlank(lc lineContext) (Block, matchResult) {
	if strings.TrimSpace(lc.line) == "" {
		return Blank(), emitBlock
	}
	return Block{}, noMatch
}

func isTableSeparator(line string) bool {
	return strings.Contains(line, "|") && strings.Contains(line, "---")
}

// splitCells drops every cell that is empty after trimming, including
// intentionally empty cells in the middle of a row. Rows with such cells
// come out shorter than their header.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		if cell := strings.TrimSpace(part); cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// isSpace accepts Unicode white space such as NBSP and the ideographic
// space, plus the byte order mark. NEL (U+0085) is not a separator.
func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}
