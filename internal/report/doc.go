package report

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
)

// DocContentType is the media type Word expects for HTML-wrapped
// documents.
const DocContentType = "application/msword"

// RenderDoc produces the evidence grid as a Word-compatible HTML
// document. The byte-order mark keeps Word from misreading the UTF-8
// body, and the mso page setup fixes A4 with 0.3in margins.
func RenderDoc(header Header, items []Item) Document {
	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">`)
	b.WriteString(`<head><meta charset="utf-8">`)
	b.WriteString(`<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View><w:Zoom>100</w:Zoom></w:WordDocument></xml><![endif]-->`)
	b.WriteString(`<style>`)
	b.WriteString(`@page{size:A4;margin:0.3in;}`)
	b.WriteString(`body{font-family:Arial,sans-serif;margin:0;}`)
	b.WriteString(`table.grid{border-collapse:collapse;border:6pt solid #000;width:100%;}`)
	b.WriteString(`table.grid td{border:1pt solid #000;width:3.33in;height:2.82in;text-align:center;vertical-align:middle;padding:2pt;}`)
	b.WriteString(`table.grid img{width:320px;height:270px;border:4.5pt solid #000;}`)
	b.WriteString(`h1{font-size:16pt;text-align:center;margin:4pt 0;}`)
	b.WriteString(`p.meta{font-size:12pt;margin:2pt 0;}`)
	b.WriteString(`</style></head><body>`)

	fmt.Fprintf(&b, `<h1>Name of the Skill Hub: %s</h1>`, html.EscapeString(header.SkillHub))
	fmt.Fprintf(&b, `<p class="meta"><b>Batch ID:</b> %s</p>`, html.EscapeString(header.BatchID))
	fmt.Fprintf(&b, `<p class="meta"><b>Job Role:</b> %s</p>`, html.EscapeString(header.JobRole))

	b.WriteString(`<table class="grid">`)
	for _, row := range Rows(items) {
		b.WriteString(`<tr>`)
		for _, item := range row {
			fmt.Fprintf(&b, `<td><img src="%s" alt="%s"></td>`, imageSrc(item), html.EscapeString(string(item.Type)))
		}
		// A trailing single-photo row keeps the second cell so the
		// outer border stays rectangular.
		if len(row) < PhotosPerRow {
			b.WriteString(`<td></td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table></body></html>`)

	return Document{
		Filename:    fmt.Sprintf("Evidence_Report_%s.doc", header.BatchID),
		ContentType: DocContentType,
		Data:        []byte(b.String()),
	}
}

// imageSrc embeds fetched photo bytes as a data URI and falls back to
// the delivery URL when the download failed.
func imageSrc(item Item) string {
	if len(item.Data) == 0 {
		return html.EscapeString(item.URL)
	}
	return "data:" + item.ContentType + ";base64," + base64.StdEncoding.EncodeToString(item.Data)
}
