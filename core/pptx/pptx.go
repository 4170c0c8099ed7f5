// Package pptx provides pure Go creation and reading of PowerPoint
// (OOXML PresentationML) decks.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/encoding"
)

// MediaType is the registered media type of a .pptx file.
const MediaType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Slide dimensions in EMU (10in x 7.5in, 4:3).
const (
	slideWidth  = 9144000
	slideHeight = 6858000
)

// Font sizes in hundredths of a point.
const (
	titleSize  = 3200
	bulletSize = 2000
)

// RGB is a solid colour.
type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as an uppercase RRGGBB string.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Palette holds the slide background colours, applied in rotation.
var Palette = []RGB{
	{40, 75, 99},
	{142, 68, 173},
	{22, 160, 133},
	{192, 57, 43},
}

// PaletteColor returns the background colour for the slide at index i.
func PaletteColor(i int) RGB {
	return Palette[i%len(Palette)]
}

var white = RGB{255, 255, 255}

// Slide is one slide of a deck.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes"`

	// Background is the RRGGBB fill; it is set by Read and ignored by Build.
	Background string `json:"background,omitempty"`
}

// Deck is a presentation under construction.
type Deck struct {
	Title   string
	Author  string
	Created time.Time
	slides  []Slide
}

// New creates an empty deck.
func New() *Deck {
	return &Deck{
		Author:  "Juniper Lessons",
		Created: time.Now().UTC(),
	}
}

// SetTitle sets the document title stored in the core properties.
func (d *Deck) SetTitle(title string) {
	d.Title = title
}

// AddSlide appends a slide. Text is written exactly as given.
func (d *Deck) AddSlide(title string, bullets []string, notes string) {
	d.slides = append(d.slides, Slide{
		Title:   title,
		Bullets: append([]string(nil), bullets...),
		Notes:   notes,
	})
}

// Len returns the number of slides added so far.
func (d *Deck) Len() int {
	return len(d.slides)
}

// Build serializes the deck as a .pptx archive.
func (d *Deck) Build() ([]byte, error) {
	if len(d.slides) == 0 {
		return nil, fmt.Errorf("presentation must have at least one slide")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", rootRels},
		{"docProps/core.xml", d.coreProps()},
		{"docProps/app.xml", d.appProps()},
		{"ppt/presentation.xml", d.presentation()},
		{"ppt/_rels/presentation.xml.rels", d.presentationRels()},
		{"ppt/slideMasters/slideMaster1.xml", slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/notesMasters/notesMaster1.xml", notesMaster},
		{"ppt/notesMasters/_rels/notesMaster1.xml.rels", notesMasterRels},
		{"ppt/theme/theme1.xml", theme("Lesson")},
		{"ppt/theme/theme2.xml", theme("Notes")},
	}
	for _, p := range parts {
		if err := writePart(zw, p.name, p.body); err != nil {
			return nil, err
		}
	}

	for i, s := range d.slides {
		n := i + 1
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", n), slideXML(s, PaletteColor(i))); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRels(n)); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), notesXML(s.Notes)); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), notesRels(n)); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writePart(zw *zip.Writer, name, body string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (d *Deck) contentTypes() string {
	var overrides strings.Builder
	for i := range d.slides {
		n := i + 1
		fmt.Fprintf(&overrides, `  <Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`+"\n", n)
		fmt.Fprintf(&overrides, `  <Override PartName="/ppt/notesSlides/notesSlide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"/>`+"\n", n)
	}

	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
  <Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
  <Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>
  <Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"/>
  <Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
  <Override PartName="/ppt/theme/theme2.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
  <Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
  <Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
` + overrides.String() + `</Types>`
}

func (d *Deck) coreProps() string {
	created := d.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	stamp := created.UTC().Format("2006-01-02T15:04:05Z")

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>%s</dc:title>
  <dc:creator>%s</dc:creator>
  <dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>
</cp:coreProperties>`,
		encoding.EscapeXMLText(d.Title),
		encoding.EscapeXMLText(d.Author),
		stamp, stamp)
}

func (d *Deck) appProps() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Application>Juniper Lessons</Application>
  <Slides>%d</Slides>
  <Notes>%d</Notes>
</Properties>`, len(d.slides), len(d.slides))
}

// Relationship ids in presentation.xml.rels: rId1 master, rId2 notes
// master, rId3 theme, then one per slide from rId10.
const firstSlideRel = 10

func (d *Deck) presentation() string {
	var ids strings.Builder
	for i := range d.slides {
		fmt.Fprintf(&ids, `    <p:sldId id="%d" r:id="rId%d"/>`+"\n", 256+i, firstSlideRel+i)
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">
  <p:sldMasterIdLst>
    <p:sldMasterId id="2147483648" r:id="rId1"/>
  </p:sldMasterIdLst>
  <p:notesMasterIdLst>
    <p:notesMasterId r:id="rId2"/>
  </p:notesMasterIdLst>
  <p:sldIdLst>
%s  </p:sldIdLst>
  <p:sldSz cx="%d" cy="%d" type="screen4x3"/>
  <p:notesSz cx="%d" cy="%d"/>
</p:presentation>`, nsA, nsR, nsP, ids.String(), slideWidth, slideHeight, slideHeight, slideWidth)
}

func (d *Deck) presentationRels() string {
	var rels strings.Builder
	rels.WriteString(`  <Relationship Id="rId1" Type="` + relSlideMaster + `" Target="slideMasters/slideMaster1.xml"/>` + "\n")
	rels.WriteString(`  <Relationship Id="rId2" Type="` + relNotesMaster + `" Target="notesMasters/notesMaster1.xml"/>` + "\n")
	rels.WriteString(`  <Relationship Id="rId3" Type="` + relTheme + `" Target="theme/theme1.xml"/>` + "\n")
	for i := range d.slides {
		fmt.Fprintf(&rels, `  <Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`+"\n", firstSlideRel+i, relSlide, i+1)
	}
	return relationships(rels.String())
}

func slideXML(s Slide, bg RGB) string {
	var body strings.Builder
	for i, bullet := range s.Bullets {
		level := 0
		if i > 0 {
			level = 1
		}
		fmt.Fprintf(&body, `<a:p><a:pPr lvl="%d"/>%s</a:p>`, level, run(bullet, bulletSize, false, white))
	}
	if len(s.Bullets) == 0 {
		body.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
    <p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr/>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
        <p:spPr><a:xfrm><a:off x="457200" y="274638"/><a:ext cx="8229600" cy="1143000"/></a:xfrm></p:spPr>
        <p:txBody><a:bodyPr/><a:lstStyle/><a:p>%s</a:p></p:txBody>
      </p:sp>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="3" name="Content Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>
        <p:spPr><a:xfrm><a:off x="457200" y="1600200"/><a:ext cx="8229600" cy="4525963"/></a:xfrm></p:spPr>
        <p:txBody><a:bodyPr><a:normAutofit/></a:bodyPr><a:lstStyle/>%s</p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
  <p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sld>`, nsA, nsR, nsP, bg.Hex(), run(s.Title, titleSize, true, white), body.String())
}

func run(text string, size int, bold bool, color RGB) string {
	b := ""
	if bold {
		b = ` b="1"`
	}
	return fmt.Sprintf(`<a:r><a:rPr lang="en-US" sz="%d"%s dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r>`,
		size, b, color.Hex(), encoding.EscapeXMLText(text))
}

func slideRels(n int) string {
	return relationships(
		`  <Relationship Id="rId1" Type="` + relSlideLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` + "\n" +
			fmt.Sprintf(`  <Relationship Id="rId2" Type="%s" Target="../notesSlides/notesSlide%d.xml"/>`, relNotesSlide, n) + "\n")
}

func notesXML(notes string) string {
	var paras strings.Builder
	for _, line := range encoding.SplitLines(notes) {
		if line == "" {
			paras.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
			continue
		}
		fmt.Fprintf(&paras, `<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>%s</a:t></a:r></a:p>`, encoding.EscapeXMLText(line))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr/>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>
        <p:spPr/>
        <p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
  <p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:notes>`, nsA, nsR, nsP, paras.String())
}

func notesRels(n int) string {
	return relationships(
		`  <Relationship Id="rId1" Type="` + relNotesMaster + `" Target="../notesMasters/notesMaster1.xml"/>` + "\n" +
			fmt.Sprintf(`  <Relationship Id="rId2" Type="%s" Target="../slides/slide%d.xml"/>`, relSlide, n) + "\n")
}

func relationships(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
` + body + `</Relationships>`
}
