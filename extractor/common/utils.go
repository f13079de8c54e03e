package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dslipak/pdf"
)

// ReaderAtFrom turns any reader into an io.ReaderAt with a known size,
// buffering it in memory when it cannot seek.
func ReaderAtFrom(reader io.Reader) (io.ReaderAt, int64, error) {
	switch v := reader.(type) {
	case io.ReaderAt:
		seeker, ok := reader.(io.Seeker)
		if !ok {
			return nil, 0, errors.New("reader is io.ReaderAt but not io.Seeker, cannot determine size")
		}
		cur, _ := seeker.Seek(0, io.SeekCurrent)
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, err
		}
		seeker.Seek(cur, io.SeekStart)
		return v, end, nil
	default:
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, 0, err
		}
		b := buf.Bytes()
		return bytes.NewReader(b), int64(len(b)), nil
	}
}

// RecoverPDF converts a panic raised by the pdf package into an error. The
// pdf package panics on malformed objects instead of returning errors.
func RecoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed pdf: %v", r)
	}
}

// OpenPDF opens a PDF reader over rAt. Malformed headers and xref tables come
// back as errors.
func OpenPDF(rAt io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer RecoverPDF(&err)
	return pdf.NewReader(rAt, size)
}

// PageText returns the page as a reader would see it: words of a line
// separated by spaces, lines separated by newlines.
func PageText(page pdf.Page) (string, error) {
	layout, err := ReadPageLayout(page)
	if err != nil {
		return "", err
	}
	return LinesText(GroupLines(layout.Glyphs)), nil
}

// ExtractPageTextsFromPDFReader returns the text of every page, index 0 being page 1.
// Pages whose text cannot be read are logged and left empty.
func ExtractPageTextsFromPDFReader(reader io.Reader) (texts []string, err error) {
	defer RecoverPDF(&err)

	rAt, size, err := ReaderAtFrom(reader)
	if err != nil {
		return nil, err
	}

	r, err := OpenPDF(rAt, size)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	texts = make([]string, numPages)

	for no := 1; no <= numPages; no++ {
		text, err := PageText(r.Page(no))
		if err != nil {
			log.Printf("Warning: error getting text from page %d: %v", no, err)
			continue
		}
		texts[no-1] = text
	}

	return texts, nil
}

func ExtractPageTextsFromPDF(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractPageTextsFromPDFReader(file)
}
