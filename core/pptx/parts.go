package pptx

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperLessons/core/encoding"
)

// Namespaces.
const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// Relationship types.
const (
	relBase        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	relOffice      = relBase + "officeDocument"
	relSlide       = relBase + "slide"
	relSlideLayout = relBase + "slideLayout"
	relSlideMaster = relBase + "slideMaster"
	relNotesSlide  = relBase + "notesSlide"
	relNotesMaster = relBase + "notesMaster"
	relTheme       = relBase + "theme"
)

var rootRels = relationships(
	`  <Relationship Id="rId1" Type="` + relOffice + `" Target="ppt/presentation.xml"/>` + "\n" +
		`  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` + "\n" +
		`  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` + "\n")

const clrMap = `<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`

const emptyTree = `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree>`

var slideMaster = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">
  <p:cSld>
    <p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>
    ` + emptyTree + `
  </p:cSld>
  ` + clrMap + `
  <p:sldLayoutIdLst>
    <p:sldLayoutId id="2147483649" r:id="rId1"/>
  </p:sldLayoutIdLst>
  <p:txStyles>
    <p:titleStyle><a:lvl1pPr algn="l"><a:defRPr sz="3200" b="1"/></a:lvl1pPr></p:titleStyle>
    <p:bodyStyle>
      <a:lvl1pPr marL="342900" indent="-342900"><a:buChar char="&#8226;"/><a:defRPr sz="2000"/></a:lvl1pPr>
      <a:lvl2pPr marL="742950" indent="-285750"><a:buChar char="&#8211;"/><a:defRPr sz="2000"/></a:lvl2pPr>
    </p:bodyStyle>
    <p:otherStyle/>
  </p:txStyles>
</p:sldMaster>`

var slideMasterRels = relationships(
	`  <Relationship Id="rId1" Type="` + relSlideLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` + "\n" +
		`  <Relationship Id="rId2" Type="` + relTheme + `" Target="../theme/theme1.xml"/>` + "\n")

var slideLayout = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="obj" preserve="1">
  <p:cSld name="Title and Content">
    ` + emptyTree + `
  </p:cSld>
  <p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>`

var slideLayoutRels = relationships(
	`  <Relationship Id="rId1" Type="` + relSlideMaster + `" Target="../slideMasters/slideMaster1.xml"/>` + "\n")

var notesMaster = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notesMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">
  <p:cSld>
    ` + emptyTree + `
  </p:cSld>
  ` + clrMap + `
</p:notesMaster>`

var notesMasterRels = relationships(
	`  <Relationship Id="rId1" Type="` + relTheme + `" Target="../theme/theme2.xml"/>` + "\n")

func theme(name string) string {
	fill := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	line := `<a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`
	effect := `<a:effectStyle><a:effectLst/></a:effectStyle>`

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="%s" name="%s">
  <a:themeElements>
    <a:clrScheme name="Juniper">
      <a:dk1><a:srgbClr val="000000"/></a:dk1>
      <a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>
      <a:dk2><a:srgbClr val="284B63"/></a:dk2>
      <a:lt2><a:srgbClr val="EEECE1"/></a:lt2>
      <a:accent1><a:srgbClr val="284B63"/></a:accent1>
      <a:accent2><a:srgbClr val="8E44AD"/></a:accent2>
      <a:accent3><a:srgbClr val="16A085"/></a:accent3>
      <a:accent4><a:srgbClr val="C0392B"/></a:accent4>
      <a:accent5><a:srgbClr val="4BACC6"/></a:accent5>
      <a:accent6><a:srgbClr val="F79646"/></a:accent6>
      <a:hlink><a:srgbClr val="0000FF"/></a:hlink>
      <a:folHlink><a:srgbClr val="800080"/></a:folHlink>
    </a:clrScheme>
    <a:fontScheme name="Juniper">
      <a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
      <a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
    </a:fontScheme>
    <a:fmtScheme name="Juniper">
      <a:fillStyleLst>%s%s%s</a:fillStyleLst>
      <a:lnStyleLst>%s%s%s</a:lnStyleLst>
      <a:effectStyleLst>%s%s%s</a:effectStyleLst>
      <a:bgFillStyleLst>%s%s%s</a:bgFillStyleLst>
    </a:fmtScheme>
  </a:themeElements>
</a:theme>`, nsA, encoding.EscapeXMLAttr(name),
		fill, fill, fill,
		line, line, line,
		effect, effect, effect,
		fill, fill, fill)
}
