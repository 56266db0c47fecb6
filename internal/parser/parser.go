package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/essaygest/internal/doctree"
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Kind says how an uploaded file is turned into text.
type Kind int

const (
	// KindUnsupported files are rejected.
	KindUnsupported Kind = iota
	// KindImage files are sent to OCR.
	KindImage
	// KindDocument files are parsed directly.
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	default:
		return "unsupported"
	}
}

var documentExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Options configures parser construction.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF reader fails.
	PDFFallbackPdftotext bool
}

// KindOf classifies a filename by extension.
func KindOf(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return KindImage
	case documentExtensions[ext]:
		return KindDocument
	default:
		return KindUnsupported
	}
}

// ForFile returns the appropriate parser for a document filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported document extension: %s", ext)
	}
}

// ParseText parses data with the parser for filename and flattens the
// result into blank-line separated paragraphs.
func ParseText(r io.Reader, filename string, opts Options) (string, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	tree, err := p.Parse(r, filename)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filename, err)
	}
	return tree.Text(), nil
}
