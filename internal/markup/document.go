package markup

import (
	"encoding/base64"
	"strings"
)

// FontFamily is the family name the Devanagari template declares.
const FontFamily = "Mangal"

// DocumentOptions selects the page template.
type DocumentOptions struct {
	// Devanagari switches the body font stack to FontFamily.
	Devanagari bool
	// FontData, when set, is embedded as a base64 @font-face source.
	FontData []byte
}

const pageStyle = `
      body {
        font-family: %FAMILY%;
        font-size: 14px;
        line-height: 1.6;
        margin: 60px;
        text-align: justify;
      }
      .content {
        text-align: center;
        margin-bottom: 20px;
        padding: 20px;
        border: 1px solid #e0e0e0;
        border-radius: 8px;
        background-color: #ffffff;
      }
      .text {
        text-align: justify;
        margin-top: 20px;
        padding: 0 10px;
      }
`

// Document wraps an exported fragment into a complete HTML page. The
// fragment is inserted verbatim into the div with class "text".
func Document(fragment string, opts DocumentOptions) string {
	family := "Arial, sans-serif"
	if opts.Devanagari {
		family = "'" + FontFamily + "', Arial, sans-serif"
	}

	var sb strings.Builder
	sb.WriteString("<html>\n  <head>\n    <meta charset=\"UTF-8\">\n    <style>")
	if opts.Devanagari && len(opts.FontData) > 0 {
		sb.WriteString("\n      @font-face {\n        font-family: '")
		sb.WriteString(FontFamily)
		sb.WriteString("';\n        src: url('data:font/ttf;base64,")
		sb.WriteString(base64.StdEncoding.EncodeToString(opts.FontData))
		sb.WriteString("') format('truetype');\n      }")
	}
	sb.WriteString(strings.Replace(pageStyle, "%FAMILY%", family, 1))
	sb.WriteString("    </style>\n  </head>\n  <body>\n    <div class=\"content\">\n      <div class=\"text\">")
	sb.WriteString(fragment)
	sb.WriteString("</div>\n    </div>\n  </body>\n</html>\n")
	return sb.String()
}
