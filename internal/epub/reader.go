// Package epub reads ePub files into plain book content: metadata plus one
// slice of paragraph texts per spine document.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Book is the parsed content of an ePub file. Pages follow the spine's
// reading order, one page per content document.
type Book struct {
	Title    string
	Author   string
	Language string
	Pages    [][]string
}

// Read parses the ePub at path.
func Read(filePath string) (*Book, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer zr.Close()
	return readArchive(&zr.Reader)
}

// ReadFrom parses an ePub from an in-memory or seekable source.
func ReadFrom(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	return readArchive(zr)
}

func readArchive(zr *zip.Reader) (*Book, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := rootfilePath(files)
	if err != nil {
		return nil, err
	}

	pkg, err := readPackage(files, opfPath)
	if err != nil {
		return nil, err
	}

	book := &Book{
		Title:    pkg.Metadata.Title,
		Author:   pkg.Metadata.Creator,
		Language: pkg.Metadata.Language,
	}

	hrefs := make(map[string]manifestItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		hrefs[item.ID] = item
	}

	opfDir := path.Dir(opfPath)
	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := hrefs[ref.IDRef]
		if !ok {
			return nil, fmt.Errorf("spine references unknown manifest item %q", ref.IDRef)
		}
		if item.MediaType != "application/xhtml+xml" {
			continue
		}

		docPath := item.Href
		if opfDir != "." {
			docPath = path.Join(opfDir, item.Href)
		}
		f, ok := files[docPath]
		if !ok {
			return nil, fmt.Errorf("content document %q not in archive", docPath)
		}

		paragraphs, err := extractParagraphs(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docPath, err)
		}
		if len(paragraphs) > 0 {
			book.Pages = append(book.Pages, paragraphs)
		}
	}

	if len(book.Pages) == 0 {
		return nil, fmt.Errorf("epub has no readable content documents")
	}
	return book, nil
}

// rootfilePath locates the OPF package document via META-INF/container.xml.
func rootfilePath(files map[string]*zip.File) (string, error) {
	f, ok := files["META-INF/container.xml"]
	if !ok {
		return "", fmt.Errorf("missing META-INF/container.xml")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var container struct {
		Rootfiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.NewDecoder(rc).Decode(&container); err != nil {
		return "", fmt.Errorf("invalid container.xml: %w", err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("container.xml names no rootfile")
	}
	return container.Rootfiles[0].FullPath, nil
}

type manifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type packageDoc struct {
	Metadata struct {
		Title    string `xml:"title"`
		Creator  string `xml:"creator"`
		Language string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

func readPackage(files map[string]*zip.File, opfPath string) (*packageDoc, error) {
	f, ok := files[opfPath]
	if !ok {
		return nil, fmt.Errorf("package document %q not in archive", opfPath)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var pkg packageDoc
	if err := xml.NewDecoder(rc).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("invalid package document: %w", err)
	}
	return &pkg, nil
}

// skippedElements are non-prose containers whose text is dropped.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// extractParagraphs pulls the text of each <p> element, whitespace
// normalized. Content documents without <p> elements yield nothing.
func extractParagraphs(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var paragraphs []string
	var sb strings.Builder
	depth := 0 // nesting inside <p>
	skip := 0  // nesting inside skipped elements

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if skippedElements[name] {
				skip++
				continue
			}
			if name == "p" {
				if depth == 0 {
					sb.Reset()
				}
				depth++
			}
		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			if skippedElements[name] && skip > 0 {
				skip--
				continue
			}
			if name == "p" && depth > 0 {
				depth--
				if depth == 0 {
					if text := normalizeSpace(sb.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		case xml.CharData:
			if depth > 0 && skip == 0 {
				sb.Write(t)
			}
		}
	}
	return paragraphs, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
