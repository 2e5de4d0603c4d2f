// Package render turns a built directory tree into tree glyph text or a JSON document.
// Both renderers visit nodes in the same pre-order.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/sdir/internal/types"
)

const (
	headingFormat = "# tree structure of directory `%s`"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directoryIcon        = "📁"
	fileIcon             = "📄"
	plainDirectorySuffix = "/"
	contentGutter        = "┊"
	errorAnnotationOpen  = " [error: "
	errorAnnotationEnd   = "]"
	lineBreak            = "\n"
)

// TextOptions controls presentation details of RenderText.
type TextOptions struct {
	// Heading is the directory name shown in the heading comment. Defaults to the root name.
	Heading string
	// RootLabel is the root path as the user typed it. Defaults to the root name.
	RootLabel string
	// Color wraps connectors and names in ANSI escape codes.
	Color bool
	// Icons prefixes names with directory and file glyphs.
	Icons bool
}

type textPalette struct {
	connector *color.Color
	directory *color.Color
	file      *color.Color
	failure   *color.Color
	content   *color.Color
}

func newTextPalette(enabled bool) *textPalette {
	if !enabled {
		return nil
	}
	palette := &textPalette{
		connector: color.New(color.FgHiBlack),
		directory: color.New(color.FgBlue, color.Bold),
		file:      color.New(color.FgGreen),
		failure:   color.New(color.FgRed),
		content:   color.New(color.FgHiBlack),
	}
	for _, style := range []*color.Color{palette.connector, palette.directory, palette.file, palette.failure, palette.content} {
		style.EnableColor()
	}
	return palette
}

func (palette *textPalette) paint(style func(*textPalette) *color.Color, text string) string {
	if palette == nil || text == "" {
		return text
	}
	return style(palette).Sprint(text)
}

type textRenderer struct {
	builder strings.Builder
	options TextOptions
	palette *textPalette
}

// RenderText renders the heading, the root line and one line per descendant node.
// With Color disabled the result depends only on the tree and options.
func RenderText(root *types.TreeNode, options TextOptions) string {
	if root == nil {
		return ""
	}
	if options.Heading == "" {
		options.Heading = root.Name
	}
	if options.RootLabel == "" {
		options.RootLabel = root.Name
	}

	renderer := &textRenderer{options: options, palette: newTextPalette(options.Color)}
	renderer.writeLine(fmt.Sprintf(headingFormat, options.Heading))
	rootLine := options.RootLabel
	if options.Icons {
		rootLine = directoryIcon + " " + options.RootLabel
	}
	renderer.writeLine(renderer.palette.paint(directoryStyle, rootLine) + renderer.errorAnnotation(root))
	renderer.writeChildren(root.Children, "")
	return renderer.builder.String()
}

func (renderer *textRenderer) writeChildren(children []*types.TreeNode, prefix string) {
	for index, child := range children {
		if child == nil {
			continue
		}
		isLast := index == len(children)-1
		connector, childPrefix := treeBranchConnector, prefix+treeBranchPadding
		if isLast {
			connector, childPrefix = treeLastConnector, prefix+treeLastPadding
		}

		renderer.writeLine(renderer.palette.paint(connectorStyle, prefix+connector) + renderer.nodeLabel(child) + renderer.errorAnnotation(child))

		if child.IsDir() {
			renderer.writeChildren(child.Children, childPrefix)
			continue
		}
		if child.Content != nil {
			renderer.writeContent(*child.Content, childPrefix)
		}
	}
}

func (renderer *textRenderer) nodeLabel(node *types.TreeNode) string {
	if node.IsDir() {
		label := node.Name + plainDirectorySuffix
		if renderer.options.Icons {
			label = directoryIcon + " " + node.Name
		}
		return renderer.palette.paint(directoryStyle, label)
	}
	label := node.Name
	if renderer.options.Icons {
		label = fileIcon + " " + node.Name
	}
	return renderer.palette.paint(fileStyle, label)
}

func (renderer *textRenderer) errorAnnotation(node *types.TreeNode) string {
	if node.Error == "" {
		return ""
	}
	return renderer.palette.paint(failureStyle, errorAnnotationOpen+node.Error+errorAnnotationEnd)
}

// writeContent writes each content line beneath its file, set off by the gutter glyph.
func (renderer *textRenderer) writeContent(content string, prefix string) {
	if content == "" {
		return
	}
	contentLines := strings.Split(strings.TrimSuffix(content, lineBreak), lineBreak)
	for _, contentLine := range contentLines {
		gutter := prefix + contentGutter
		if contentLine != "" {
			gutter += " "
		}
		renderer.writeLine(renderer.palette.paint(contentStyle, gutter) + contentLine)
	}
}

func (renderer *textRenderer) writeLine(line string) {
	renderer.builder.WriteString(line)
	renderer.builder.WriteString(lineBreak)
}

func connectorStyle(palette *textPalette) *color.Color { return palette.connector }
func directoryStyle(palette *textPalette) *color.Color { return palette.directory }
func fileStyle(palette *textPalette) *color.Color      { return palette.file }
func failureStyle(palette *textPalette) *color.Color   { return palette.failure }
func contentStyle(palette *textPalette) *color.Color   { return palette.content }
