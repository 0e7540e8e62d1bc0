package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/gnolang/depmatch/process"
)

var (
	headerStyle  = color.New(color.FgGreen, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	triggerStyle = color.New(color.FgRed, color.Bold)
	roleStyle    = color.New(color.FgMagenta)
)

const recordTemplate = `{{header .Rule .File .Sentence .Ordinal -}}
{{snippet .Words .Padding -}}
{{underline .Words .Trigger .Padding -}}
{{range .Args}}{{arg . $.Padding}}{{end}}
`

var tmpl = template.Must(template.New("record").Funcs(template.FuncMap{
	"header":    header,
	"snippet":   snippet,
	"underline": underline,
	"arg":       arg,
}).Parse(recordTemplate))

type recordData struct {
	process.Record
	Padding string
}

// FormatRecords renders records as human readable text blocks.
func FormatRecords(records []process.Record) string {
	var buf bytes.Buffer
	for _, r := range records {
		buf.WriteString(FormatRecord(r))
	}
	return buf.String()
}

// FormatRecord renders one record.
func FormatRecord(r process.Record) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, recordData{Record: r, Padding: " "}); err != nil {
		return fmt.Sprintf("Error formatting record: %v\n", err)
	}
	return buf.String()
}

// WriteText writes the text rendering of records to w.
func WriteText(w io.Writer, records []process.Record) error {
	_, err := io.WriteString(w, FormatRecords(records))
	return err
}

// WriteJSON writes records to w as an indented JSON array. An empty
// result is written as [].
func WriteJSON(w io.Writer, records []process.Record) error {
	if records == nil {
		records = []process.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func header(rule, file, sentence string, ordinal int) string {
	out := headerStyle.Sprint("match: ") + ruleStyle.Sprintf("%s\n", rule)
	out += lineStyle.Sprint(" --> ")
	if sentence == "" {
		sentence = file
	}
	out += fileStyle.Sprintf("%s", sentence)
	out += fmt.Sprintf(" (sentence %d)\n", ordinal+1)
	return out
}

func snippet(words []string, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)
	out += lineStyle.Sprintf("%s| ", padding) + strings.Join(words, " ") + "\n"
	return out
}

// underline marks the trigger token below the sentence line.
func underline(words []string, trigger int, padding string) string {
	out := lineStyle.Sprintf("%s| ", padding)
	if trigger < 0 || trigger >= len(words) {
		return out + "\n"
	}

	column := 0
	for _, w := range words[:trigger] {
		column += utf8.RuneCountInString(w) + 1
	}
	width := utf8.RuneCountInString(words[trigger])
	if width == 0 {
		width = 1
	}

	out += strings.Repeat(" ", column)
	out += triggerStyle.Sprintf("%s trigger\n", strings.Repeat("^", width))
	return out
}

func arg(a process.Arg, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + roleStyle.Sprint(a.Role) + fmt.Sprintf(" = %s[%d]\n", a.Word, a.Index)
}
