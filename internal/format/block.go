// Package format turns the constrained markdown dialect emitted by the
// blueprint generator into typed blocks for the display layer.
package format

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindOrderedItem
	KindBulletItem
	KindTableRow
	KindBlank
)

var kindNames = map[Kind]string{
	KindParagraph:   "paragraph",
	KindHeading:     "heading",
	KindOrderedItem: "ordered_item",
	KindBulletItem:  "bullet_item",
	KindTableRow:    "table_row",
	KindBlank:       "blank",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown block kind %q", text)
}

// Run is a contiguous span of text, either plain or emphasized.
type Run struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized"`
}

// Block is one parsed unit. Only the fields relevant to Kind are set:
// Level/Text for headings, Index/Label/Runs for ordered items, Runs for
// bullets and paragraphs, Cells/Header for table rows.
type Block struct {
	Kind   Kind     `json:"kind"`
	Level  int      `json:"level,omitempty"`
	Text   string   `json:"text,omitempty"`
	Index  int      `json:"index,omitempty"`
	Label  string   `json:"label,omitempty"`
	Runs   []Run    `json:"runs,omitempty"`
	Cells  []string `json:"cells,omitempty"`
	Header bool     `json:"header,omitempty"`
}

func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

func OrderedItem(index int, label string, runs []Run) Block {
	return Block{Kind: KindOrderedItem, Index: index, Label: label, Runs: runs}
}

func BulletItem(runs []Run) Block {
	return Block{Kind: KindBulletItem, Runs: runs}
}

func TableRow(cells []string, header bool) Block {
	return Block{Kind: KindTableRow, Cells: cells, Header: header}
}

func Paragraph(runs []Run) Block {
	return Block{Kind: KindParagraph, Runs: runs}
}

func Blank() Block {
	return Block{Kind: KindBlank}
}

// PlainText concatenates the text of runs, dropping emphasis.
func PlainText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
