// Package cdata builds C source text: a header part holding extern
// declarations and a source part holding definitions.
package cdata

import (
	"fmt"
	"strings"
)

// Indent is the prefix of every initializer line.
const Indent = "\t"

// CData is a pair of header and source text.
type CData struct {
	Header string
	Source string
}

// Append concatenates other after c.
func (c *CData) Append(other CData) {
	c.Header += other.Header
	c.Source += other.Source
}

// AppendSource adds formatted text to the source part.
func (c *CData) AppendSource(format string, args ...any) {
	c.Source += fmt.Sprintf(format, args...)
}

// AppendHeader adds formatted text to the header part.
func (c *CData) AppendHeader(format string, args ...any) {
	c.Header += fmt.Sprintf(format, args...)
}

// Empty reports whether both parts are empty.
func (c CData) Empty() bool {
	return c.Header == "" && c.Source == ""
}

// Array is a C array definition under construction.
//
// Rendered source is
//
//	<Type> <Name>[<Count>] = {
//		<line>,
//	};
//
// with an empty count when Sized is false.
type Array struct {
	Type  string
	Name  string
	Sized bool
	// Count overrides the rendered count; defaults to the number of lines.
	Count string
	// Terminated marks lines that already end with their own separator.
	Terminated bool
	lines      []string
}

// NewArray creates an array whose count is the number of lines.
func NewArray(typ, name string) *Array {
	return &Array{Type: typ, Name: name, Sized: true}
}

// NewUnsizedArray creates an array rendered with empty brackets.
func NewUnsizedArray(typ, name string) *Array {
	return &Array{Type: typ, Name: name}
}

// Add appends a formatted initializer line.
func (a *Array) Add(format string, args ...any) {
	a.lines = append(a.lines, fmt.Sprintf(format, args...))
}

// Len returns the number of lines.
func (a *Array) Len() int {
	return len(a.lines)
}

// Dims returns the bracket content of the declaration.
func (a *Array) Dims() string {
	if !a.Sized {
		return ""
	}
	if a.Count != "" {
		return a.Count
	}
	return fmt.Sprint(len(a.lines))
}

// Declaration returns "<Type> <Name>[<count>]".
func (a *Array) Declaration() string {
	return fmt.Sprintf("%s %s[%s]", a.Type, a.Name, a.Dims())
}

// CData renders the extern declaration and the definition.
func (a *Array) CData() CData {
	var sb strings.Builder
	sb.WriteString(a.Declaration())
	sb.WriteString(" = {\n")
	for _, line := range a.lines {
		sb.WriteString(Indent)
		sb.WriteString(line)
		if !a.Terminated {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("};\n\n")

	return CData{
		Header: "extern " + a.Declaration() + ";\n",
		Source: sb.String(),
	}
}

// Struct renders a struct definition with one field per line.
func Struct(typ, name string, fields ...string) CData {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s = {\n", typ, name)
	for _, f := range fields {
		sb.WriteString(Indent + f + ",\n")
	}
	sb.WriteString("};\n\n")
	return CData{
		Header: fmt.Sprintf("extern %s %s;\n", typ, name),
		Source: sb.String(),
	}
}

// Hex formats a value as zero-padded hexadecimal, keeping the sign of
// negative values.
func Hex(v int64, width int) string {
	if v < 0 {
		return fmt.Sprintf("-0x%0*X", width, -v)
	}
	return fmt.Sprintf("0x%0*X", width, v)
}

// Include returns an #include line.
func Include(path string) string {
	return fmt.Sprintf("#include \"%s\"\n", path)
}
