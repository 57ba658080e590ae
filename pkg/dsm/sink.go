package dsm

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path"
	"strings"

	"github.com/fivetwenty-io/dsm/internal/constants"
)

// Param is one resolved name/value pair.
type Param struct {
	Name  string
	Value string
}

// QuerySink collects parameters for a URL query string, keeping the order
// they were added in.
type QuerySink struct {
	params []Param
}

// NewQuerySink returns an empty query sink.
func NewQuerySink() *QuerySink {
	return &QuerySink{}
}

// Put implements Sink.
func (s *QuerySink) Put(name, wire string, _ Value) error {
	s.params = append(s.params, Param{Name: name, Value: wire})

	return nil
}

// Params returns the collected parameters in order.
func (s *QuerySink) Params() []Param {
	return append([]Param(nil), s.params...)
}

// Values returns the parameters as url.Values. Ordering is lost.
func (s *QuerySink) Values() url.Values {
	values := make(url.Values, len(s.params))
	for _, p := range s.params {
		values.Add(p.Name, p.Value)
	}

	return values
}

// Encode renders the parameters as a query string in the order they were
// added.
func (s *QuerySink) Encode() string {
	var builder strings.Builder

	for i, p := range s.params {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(p.Name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(p.Value))
	}

	return builder.String()
}

type filePart struct {
	name string
	file File
}

// MultipartSink collects parameters for a multipart/form-data body. Text
// parts are written in the order they were added, file parts after all
// text parts because the server expects the file content last.
type MultipartSink struct {
	boundary string
	fields   []Param
	files    []filePart
}

// NewMultipartSink returns an empty multipart sink. An empty boundary uses
// the default one.
func NewMultipartSink(boundary string) *MultipartSink {
	if boundary == "" {
		boundary = constants.DefaultMultipartBoundary
	}

	return &MultipartSink{boundary: boundary}
}

// Put implements Sink.
func (s *MultipartSink) Put(name, wire string, value Value) error {
	if file, ok := value.(File); ok {
		if file.Open == nil {
			return fmt.Errorf("%w: file part %q has no content", ErrInvalidTarget, name)
		}

		s.files = append(s.files, filePart{name: name, file: file})

		return nil
	}

	s.fields = append(s.fields, Param{Name: name, Value: wire})

	return nil
}

// Fields returns the text parts in order.
func (s *MultipartSink) Fields() []Param {
	return append([]Param(nil), s.fields...)
}

// ContentType returns the Content-Type header value for the body.
func (s *MultipartSink) ContentType() string {
	return "multipart/form-data; boundary=" + s.boundary
}

// WriteTo writes the complete body to w.
func (s *MultipartSink) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}
	writer := multipart.NewWriter(counter)

	err := writer.SetBoundary(s.boundary)
	if err != nil {
		return counter.n, fmt.Errorf("setting multipart boundary: %w", err)
	}

	for _, field := range s.fields {
		err = writer.WriteField(field.Name, field.Value)
		if err != nil {
			return counter.n, fmt.Errorf("writing field %q: %w", field.Name, err)
		}
	}

	for _, part := range s.files {
		err = writePart(writer, part)
		if err != nil {
			return counter.n, err
		}
	}

	err = writer.Close()
	if err != nil {
		return counter.n, fmt.Errorf("closing multipart body: %w", err)
	}

	return counter.n, nil
}

// Bytes renders the complete body.
func (s *MultipartSink) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	_, err := s.WriteTo(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writePart(writer *multipart.Writer, part filePart) error {
	dst, err := writer.CreateFormFile(part.name, path.Base(part.file.Name))
	if err != nil {
		return fmt.Errorf("creating file part %q: %w", part.name, err)
	}

	src, err := part.file.Open()
	if err != nil {
		return fmt.Errorf("opening file part %q: %w", part.name, err)
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("copying file part %q: %w", part.name, err)
	}

	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err //nolint:wrapcheck
}
