package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"

	"github.com/westpoint-robotics/ros-cot/internal/tactical"
)

// RootElement is the document element of a mission file.
const RootElement = "SpatialConstraints"

// LoadSpatialConstraints reads a mission document from r.
func LoadSpatialConstraints(r io.Reader) (*tactical.SpatialConstraints, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse mission document: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != RootElement {
		return nil, malformed(root, "document root must be <%s>", RootElement)
	}
	return DecodeSpatialConstraints(root)
}

// LoadFile reads a mission document from path.
func LoadFile(path string) (*tactical.SpatialConstraints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mission file: %w", err)
	}
	defer f.Close()
	return LoadSpatialConstraints(f)
}

// WriteSpatialConstraints writes sc to w as an indented XML document.
func WriteSpatialConstraints(w io.Writer, sc *tactical.SpatialConstraints) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	EncodeSpatialConstraints(&doc.Element, RootElement, sc)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write mission document: %w", err)
	}
	return nil
}
