package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	textFont  = "Times,serif"
	musicFont = "Bravura,'Noto Music','Segoe UI Symbol',serif"
)

// EscapeXML escapes s for use in SVG text and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WrapGroup writes fn's output inside a <g> carrying a class and data id, so
// pointer handlers can map elements back to score objects.
func WrapGroup(buf *bytes.Buffer, class string, id int, fn func()) {
	if id > 0 {
		fmt.Fprintf(buf, `  <g class="%s" data-id="%d">`+"\n", class, id)
	} else {
		fmt.Fprintf(buf, `  <g class="%s">`+"\n", class)
	}
	fn()
	buf.WriteString("  </g>\n")
}

func fontStyle(style string) string {
	switch style {
	case "bold":
		return ` font-weight="bold"`
	case "italic":
		return ` font-style="italic"`
	case "bold-italic":
		return ` font-weight="bold" font-style="italic"`
	}
	return ""
}
