// Package drawio writes diagrams.net (draw.io) documents that overlay
// flow arrows on a rendered map image.
package drawio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/woozymasta/ssamap/internal/config"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/xml"
)

// ErrUnknownAnchor is returned when a flow references an anchor that is not declared.
var ErrUnknownAnchor = errors.New("unknown anchor")

// ErrInvalidAnchorID is returned for anchor ids that are empty, numeric or repeated.
var ErrInvalidAnchorID = errors.New("invalid anchor id")

// Diagram is the content of one exported document.
type Diagram struct {
	Modified time.Time
	Image    string
	Anchors  []config.Anchor
	Flows    []config.Flow

	// Image cell geometry, in diagram pixels.
	ImageX, ImageY, ImageSize float64
}

// FromConfig builds a diagram from the drawio settings.
func FromConfig(c config.Drawio, modified time.Time) Diagram {
	return Diagram{
		Modified:  modified,
		Image:     c.Image,
		Anchors:   c.Anchors,
		Flows:     c.Flows,
		ImageX:    50,
		ImageY:    50,
		ImageSize: 1000,
	}
}

const (
	edgeStyle = "edgeStyle=orthogonalEdgeStyle;rounded=1;orthogonalLoop=1;jettySize=auto;html=1;%s" +
		"startArrow=none;startFill=0;endArrow=classic;endFill=1;strokeWidth=3;strokeColor=%s;curved=1;"
	anchorStyle = "ellipse;whiteSpace=wrap;html=1;aspect=fixed;fillColor=none;strokeColor=none;"
	textStyle   = "text;html=1;strokeColor=none;fillColor=none;align=left;verticalAlign=middle;whiteSpace=wrap;rounded=0;"
)

// ports maps an exit side to the exit and entry connection points.
var ports = map[string]string{
	"right":  "exitX=1;exitY=0.5;entryX=0;entryY=0.5;",
	"left":   "exitX=0;exitY=0.5;entryX=1;entryY=0.5;",
	"bottom": "exitX=0.5;exitY=1;entryX=0.5;entryY=0;",
	"top":    "exitX=0.5;exitY=0;entryX=0.5;entryY=1;",
}

// Build creates the mxfile document.
func Build(d Diagram) (*etree.Document, error) {
	known := make(map[string]bool, len(d.Anchors))
	for _, a := range d.Anchors {
		// numeric ids are reserved for generated cells
		if _, err := strconv.Atoi(a.ID); err == nil || a.ID == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAnchorID, a.ID)
		}
		if known[a.ID] {
			return nil, fmt.Errorf("%w: %q declared twice", ErrInvalidAnchorID, a.ID)
		}
		known[a.ID] = true
	}
	for _, f := range d.Flows {
		if !known[f.From] {
			return nil, fmt.Errorf("%w %q", ErrUnknownAnchor, f.From)
		}
		if !known[f.To] {
			return nil, fmt.Errorf("%w %q", ErrUnknownAnchor, f.To)
		}
		if _, ok := ports[f.Exit]; f.Exit != "" && !ok {
			return nil, fmt.Errorf("flow %s -> %s: unknown exit side %q", f.From, f.To, f.Exit)
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	mxfile := doc.CreateElement("mxfile")
	mxfile.CreateAttr("host", "app.diagrams.net")
	mxfile.CreateAttr("modified", d.Modified.UTC().Format("2006-01-02T15:04:05.000Z"))
	mxfile.CreateAttr("agent", "ssamap")
	mxfile.CreateAttr("version", "15.8.3")
	mxfile.CreateAttr("type", "device")

	diagram := mxfile.CreateElement("diagram")
	diagram.CreateAttr("id", "migration-map")
	diagram.CreateAttr("name", "Migration Map")

	model := diagram.CreateElement("mxGraphModel")
	for _, kv := range [][2]string{
		{"dx", "1422"}, {"dy", "1598"}, {"grid", "1"}, {"gridSize", "10"},
		{"guides", "1"}, {"tooltips", "1"}, {"connect", "1"}, {"arrows", "1"},
		{"fold", "1"}, {"page", "1"}, {"pageScale", "1"},
		{"pageWidth", "1169"}, {"pageHeight", "1654"},
		{"background", "#ffffff"}, {"math", "0"}, {"shadow", "0"},
	} {
		model.CreateAttr(kv[0], kv[1])
	}

	root := model.CreateElement("root")
	cell(root, "0", "")
	cell(root, "1", "0")

	ids := &counter{next: 2}

	img := vertex(root, ids.id(), "",
		"shape=image;verticalLabelPosition=bottom;labelBackgroundColor=#ffffff;verticalAlign=top;"+
			"aspect=fixed;imageAspect=0;image="+d.Image+";")
	geometry(img, d.ImageX, d.ImageY, d.ImageSize, d.ImageSize)

	root.CreateComment(" Migration Arrows ")
	for _, f := range d.Flows {
		e := cell(root, ids.id(), "1")
		e.CreateAttr("style", fmt.Sprintf(edgeStyle, ports[f.Exit], f.Color))
		e.CreateAttr("edge", "1")
		e.CreateAttr("source", f.From)
		e.CreateAttr("target", f.To)

		g := e.CreateElement("mxGeometry")
		g.CreateAttr("relative", "1")
		g.CreateAttr("as", "geometry")
	}

	root.CreateComment(" Hidden reference points for countries ")
	for _, a := range d.Anchors {
		v := vertex(root, a.ID, "", anchorStyle)
		geometry(v, a.X, a.Y, 10, 10)
	}

	legend(root, ids, d.Flows)

	doc.Indent(2)
	return doc, nil
}

// legend adds a title and one sample arrow per labelled flow.
func legend(root *etree.Element, ids *counter, flows []config.Flow) {
	var labelled []config.Flow
	for _, f := range flows {
		if f.Legend != "" {
			labelled = append(labelled, f)
		}
	}
	if len(labelled) == 0 {
		return
	}

	root.CreateComment(" Legend ")
	title := vertex(root, ids.id(), "Migration Flows", textStyle+"fontStyle=1")
	geometry(title, 800, 600, 100, 20)

	for i, f := range labelled {
		y := 640 + float64(i)*30

		arrow := cell(root, ids.id(), "1")
		arrow.CreateAttr("value", "")
		arrow.CreateAttr("style", "endArrow=classic;html=1;strokeWidth=3;strokeColor="+f.Color+";")
		arrow.CreateAttr("edge", "1")

		g := arrow.CreateElement("mxGeometry")
		g.CreateAttr("width", "50")
		g.CreateAttr("height", "50")
		g.CreateAttr("relative", "1")
		g.CreateAttr("as", "geometry")
		point(g, 800, y, "sourcePoint")
		point(g, 850, y, "targetPoint")

		label := vertex(root, ids.id(), f.Legend, textStyle)
		geometry(label, 860, y-10, 120, 20)
	}
}

type counter struct{ next int }

func (c *counter) id() string {
	id := strconv.Itoa(c.next)
	c.next++
	return id
}

func cell(root *etree.Element, id, parent string) *etree.Element {
	c := root.CreateElement("mxCell")
	c.CreateAttr("id", id)
	if parent != "" {
		c.CreateAttr("parent", parent)
	}
	return c
}

func vertex(root *etree.Element, id, value, style string) *etree.Element {
	v := cell(root, id, "1")
	v.CreateAttr("value", value)
	v.CreateAttr("style", style)
	v.CreateAttr("vertex", "1")
	return v
}

func geometry(parent *etree.Element, x, y, w, h float64) {
	g := parent.CreateElement("mxGeometry")
	g.CreateAttr("x", num(x))
	g.CreateAttr("y", num(y))
	g.CreateAttr("width", num(w))
	g.CreateAttr("height", num(h))
	g.CreateAttr("as", "geometry")
}

func point(parent *etree.Element, x, y float64, as string) {
	p := parent.CreateElement("mxPoint")
	p.CreateAttr("x", num(x))
	p.CreateAttr("y", num(y))
	p.CreateAttr("as", as)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Write serializes the document to path, minified when compact is set.
func Write(doc *etree.Document, path string, compact bool) error {
	out, err := doc.WriteToString()
	if err != nil {
		return err
	}

	if compact {
		m := minify.New()
		m.AddFunc("text/xml", xml.Minify)
		if out, err = m.String("text/xml", out); err != nil {
			return fmt.Errorf("minify: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return err
	}

	log.Info().Str("path", path).Bool("compact", compact).Msg("Draw.io file created")
	return nil
}
