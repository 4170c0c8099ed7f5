package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// maxPartSize bounds a single decompressed part.
const maxPartSize = 16 << 20

var (
	xpSlideIDs      = xpath.MustCompile(`//*[local-name()='sldIdLst']/*[local-name()='sldId']`)
	xpRelationships = xpath.MustCompile(`//*[local-name()='Relationship']`)
	xpShapes        = xpath.MustCompile(`//*[local-name()='spTree']/*[local-name()='sp']`)
	xpPlaceholder   = xpath.MustCompile(`.//*[local-name()='nvPr']/*[local-name()='ph']`)
	xpParagraphs    = xpath.MustCompile(`.//*[local-name()='txBody']/*[local-name()='p']`)
	xpText          = xpath.MustCompile(`.//*[local-name()='t']`)
	xpBackground    = xpath.MustCompile(`//*[local-name()='bg']//*[local-name()='srgbClr']`)
)

type rel struct {
	Type   string
	Target string
}

// Read parses a .pptx archive and returns its slides in presentation order.
// Paragraphs of the body placeholder become bullets; notes paragraphs are
// joined with newlines.
func Read(data []byte) ([]Slide, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening presentation archive: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	pres, err := parsePart(files, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	presRels, err := readRels(files, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}

	var slides []Slide
	for _, node := range xmlquery.QuerySelectorAll(pres, xpSlideIDs) {
		id := qualifiedAttr(node, "id")
		r, ok := presRels[id]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found", id)
		}
		slide, err := readSlide(files, resolve("ppt/presentation.xml", r.Target))
		if err != nil {
			return nil, err
		}
		slides = append(slides, slide)
	}
	return slides, nil
}

func readSlide(files map[string]*zip.File, name string) (Slide, error) {
	doc, err := parsePart(files, name)
	if err != nil {
		return Slide{}, err
	}

	var s Slide
	if bg := xmlquery.QuerySelector(doc, xpBackground); bg != nil {
		s.Background = attr(bg, "val")
	}

	for _, sp := range xmlquery.QuerySelectorAll(doc, xpShapes) {
		ph := xmlquery.QuerySelector(sp, xpPlaceholder)
		if ph == nil {
			continue
		}
		paras := paragraphs(sp)
		switch {
		case attr(ph, "type") == "title":
			s.Title = strings.Join(paras, " ")
		case attr(ph, "idx") == "1":
			s.Bullets = paras
		}
	}

	rels, err := readRels(files, name)
	if err != nil {
		return Slide{}, err
	}
	for _, r := range rels {
		if r.Type != relNotesSlide {
			continue
		}
		notes, err := parsePart(files, resolve(name, r.Target))
		if err != nil {
			return Slide{}, err
		}
		for _, sp := range xmlquery.QuerySelectorAll(notes, xpShapes) {
			ph := xmlquery.QuerySelector(sp, xpPlaceholder)
			if ph != nil && attr(ph, "type") == "body" {
				s.Notes = strings.Join(paragraphs(sp), "\n")
			}
		}
	}
	return s, nil
}

// paragraphs returns the text of each paragraph in a shape. A body with a
// single empty paragraph has no bullets.
func paragraphs(sp *xmlquery.Node) []string {
	var out []string
	for _, p := range xmlquery.QuerySelectorAll(sp, xpParagraphs) {
		var sb strings.Builder
		for _, t := range xmlquery.QuerySelectorAll(p, xpText) {
			sb.WriteString(t.InnerText())
		}
		out = append(out, sb.String())
	}
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

func readRels(files map[string]*zip.File, part string) (map[string]rel, error) {
	name := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
	doc, err := parsePart(files, name)
	if err != nil {
		return nil, err
	}
	rels := make(map[string]rel)
	for _, n := range xmlquery.QuerySelectorAll(doc, xpRelationships) {
		rels[attr(n, "Id")] = rel{Type: attr(n, "Type"), Target: attr(n, "Target")}
	}
	return rels, nil
}

func parsePart(files map[string]*zip.File, name string) (*xmlquery.Node, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("presentation part %s missing", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	doc, err := xmlquery.Parse(io.LimitReader(rc, maxPartSize))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return doc, nil
}

// resolve interprets a relationship target relative to the part that owns
// the relationship.
func resolve(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(part), target))
}

// attr returns the value of an unprefixed attribute.
func attr(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

// qualifiedAttr returns the value of a namespaced attribute such as r:id.
func qualifiedAttr(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.Name.Space != "" {
			return a.Value
		}
	}
	return ""
}
