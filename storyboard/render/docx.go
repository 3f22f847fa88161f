package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/leofalp/toonboard/storyboard"
)

// DOCXContentType is the media type of the document written by DOCX.
const DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

	docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:sz w:val="22"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/><w:spacing w:after="240"/></w:pPr><w:rPr><w:b/><w:sz w:val="52"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="200" w:after="80"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>
</w:styles>`

	docxDocumentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	docxDocumentClose = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/></w:sectPr></w:body></w:document>`
)

// DOCX writes sb as a Word document: the title, topic and hashtags, then one
// section per page with bold labels and a rule between pages.
func DOCX(w io.Writer, sb storyboard.Storyboard) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/document.xml", documentXML(sb)},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := io.WriteString(f, part.body); err != nil {
			return fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	return zw.Close()
}

// DOCXBytes is DOCX into memory.
func DOCXBytes(sb storyboard.Storyboard) ([]byte, error) {
	var buf bytes.Buffer
	if err := DOCX(&buf, sb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentXML(sb storyboard.Storyboard) string {
	var d docBuilder
	d.b.WriteString(docxDocumentOpen)

	d.paragraph("Title", run{text: sb.WholeTitle})
	d.paragraph("Heading1", run{text: "📝 " + labelTopic})
	d.paragraph("", run{text: sb.StoryTopic})
	d.paragraph("Heading1", run{text: "🏷️ " + labelHashtags})
	d.paragraph("", run{text: strings.Join(sb.Hashtags, " ")})
	d.paragraph("Heading1", run{text: "📖 Storyboard"})

	for i, page := range sb.Pages {
		d.paragraph("Heading2", run{text: fmt.Sprintf("%s %d", labelPage, page.Number)})

		d.paragraph("", run{text: "👥 " + labelCharacters + ": ", bold: true})
		d.paragraph("", run{text: strings.Join(page.Characters, ", ")})

		d.paragraph("", run{text: "🎬 " + labelBackground + ": ", bold: true})
		d.paragraph("", run{text: page.Background})

		d.paragraph("", run{text: "💬 " + labelDialogue + ": ", bold: true})
		lines := make([]run, 0, len(page.Dialogue))
		for j, line := range page.Dialogue {
			lines = append(lines, run{text: quoteLine(line), breakBefore: j > 0})
		}
		d.paragraph("", lines...)

		d.paragraph("", run{text: "🎭 " + labelPose + ": ", bold: true})
		d.paragraph("", run{text: page.ExpressionPose})

		if i < len(sb.Pages)-1 {
			d.paragraph("", run{text: strings.Repeat("-", majorRule)})
		}
	}

	d.b.WriteString(docxDocumentClose)
	return d.b.String()
}

type run struct {
	text        string
	bold        bool
	breakBefore bool
}

type docBuilder struct {
	b strings.Builder
}

func (d *docBuilder) paragraph(style string, runs ...run) {
	d.b.WriteString("<w:p>")
	if style != "" {
		d.b.WriteString(`<w:pPr><w:pStyle w:val="`)
		d.b.WriteString(style)
		d.b.WriteString(`"/></w:pPr>`)
	}
	for _, r := range runs {
		d.b.WriteString("<w:r>")
		if r.bold {
			d.b.WriteString("<w:rPr><w:b/></w:rPr>")
		}
		if r.breakBefore {
			d.b.WriteString("<w:br/>")
		}
		d.b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(&d.b, []byte(r.text))
		d.b.WriteString("</w:t></w:r>")
	}
	d.b.WriteString("</w:p>")
}
