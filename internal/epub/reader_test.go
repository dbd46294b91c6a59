package epub

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildTestEpub(t *testing.T, docs map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range docs {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

const testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>A Riddle in Brass</dc:title>
    <dc:creator>J. Smith</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const testCh1 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter 1</title><style>p { margin: 0; }</style></head>
<body>
  <h1>Chapter 1</h1>
  <p>The first   paragraph,
     with <em>markup</em> and odd spacing.</p>
  <p>The second paragraph.</p>
  <p>   </p>
</body>
</html>`

const testCh2 = `<html xmlns="http://www.w3.org/1999/xhtml">
<body><p>Only paragraph of chapter two &amp; nothing more.</p></body>
</html>`

func newTestBook(t *testing.T) *Book {
	t.Helper()
	data := buildTestEpub(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/ch1.xhtml":        testCh1,
		"OEBPS/ch2.xhtml":        testCh2,
		"OEBPS/style.css":        "p { margin: 0; }",
	})
	book, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	return book
}

func TestReadMetadata(t *testing.T) {
	book := newTestBook(t)
	if book.Title != "A Riddle in Brass" {
		t.Fatalf("title = %q", book.Title)
	}
	if book.Author != "J. Smith" {
		t.Fatalf("author = %q", book.Author)
	}
	if book.Language != "en" {
		t.Fatalf("language = %q", book.Language)
	}
}

func TestReadPages(t *testing.T) {
	book := newTestBook(t)
	if len(book.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %#v", len(book.Pages), book.Pages)
	}
	want := []string{
		"The first paragraph, with markup and odd spacing.",
		"The second paragraph.",
	}
	if len(book.Pages[0]) != len(want) {
		t.Fatalf("page 1 paragraphs = %#v", book.Pages[0])
	}
	for i, p := range want {
		if book.Pages[0][i] != p {
			t.Fatalf("page 1 paragraph %d = %q, want %q", i, book.Pages[0][i], p)
		}
	}
	if book.Pages[1][0] != "Only paragraph of chapter two & nothing more." {
		t.Fatalf("page 2 paragraph = %q", book.Pages[1][0])
	}
}

func TestReadMissingContainer(t *testing.T) {
	data := buildTestEpub(t, map[string]string{"mimetype": "application/epub+zip"})
	if _, err := ReadFrom(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected an error for a zip without container.xml")
	}
}

func TestReadBadSpineRef(t *testing.T) {
	opf := `<package xmlns="http://www.idpf.org/2007/opf">
  <metadata><title>X</title></metadata>
  <manifest></manifest>
  <spine><itemref idref="ghost"/></spine>
</package>`
	data := buildTestEpub(t, map[string]string{
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      opf,
	})
	if _, err := ReadFrom(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected an error for a dangling spine reference")
	}
}
