// Package dsmtest provides a fake DSM server for tests.
package dsmtest

import (
	"encoding/json"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// Request is a request the server received.
type Request struct {
	API        string
	Method     string
	Version    int
	HTTPMethod string
	Path       string
	SessionID  string
	// Params holds every non-file parameter.
	Params url.Values
	// Order lists parameter and part names in the order they were sent.
	Order []string
	Files map[string]File
	// ContentLength is the declared body size, -1 when unknown.
	ContentLength int64
}

// File is a received file part.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Handler answers one API method. It returns the raw response body.
type Handler func(req *Request) []byte

// Server is a fake DSM web server.
type Server struct {
	*httptest.Server

	mutex        sync.Mutex
	capabilities dsm.CapabilityMap
	handlers     map[string]Handler
	requests     []*Request
	discoveries  int
}

// DefaultCapabilities returns the directory of a typical DSM 6 server.
func DefaultCapabilities() dsm.CapabilityMap {
	return dsm.CapabilityMap{
		"SYNO.API.Info":                 {Path: "query.cgi", MinVersion: 1, MaxVersion: 1},
		"SYNO.API.Auth":                 {Path: "auth.cgi", MinVersion: 1, MaxVersion: 6},
		"SYNO.FileStation.Info":         {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.List":         {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.Thumb":        {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.Upload":       {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.Download":     {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.CreateFolder": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.Rename":       {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		"SYNO.FileStation.CopyMove":     {Path: "entry.cgi", MinVersion: 1, MaxVersion: 3},
		"SYNO.FileStation.Delete":       {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
	}
}

// NewServer starts a server advertising capabilities. It is closed when
// the test ends.
func NewServer(t testing.TB, capabilities dsm.CapabilityMap) *Server {
	t.Helper()

	s := &Server{
		capabilities: maps.Clone(capabilities),
		handlers:     make(map[string]Handler),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// Handle registers h for api and method.
func (s *Server) Handle(api, method string, h Handler) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.handlers[api+"."+method] = h
}

// SetCapabilities replaces the advertised directory.
func (s *Server) SetCapabilities(capabilities dsm.CapabilityMap) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.capabilities = maps.Clone(capabilities)
}

// Requests returns the received requests, discovery included.
func (s *Server) Requests() []*Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]*Request(nil), s.requests...)
}

// Last returns the last request received for api, or nil.
func (s *Server) Last(api string) *Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].API == api {
			return s.requests[i]
		}
	}

	return nil
}

// Discoveries returns how many discovery calls were answered.
func (s *Server) Discoveries() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.discoveries
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	req, err := record(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	s.mutex.Lock()
	s.requests = append(s.requests, req)

	var (
		body    []byte
		handler Handler
	)

	capability, known := s.capabilities[req.API]

	switch {
	case req.API == "SYNO.API.Info" && req.Method == "query":
		s.discoveries++
		body = Success(s.capabilities)
	case !known:
		body = Failure(dsm.CodeAPINotFound)
	case "/webapi/"+capability.Path != req.Path:
		body = Failure(dsm.CodeAPINotFound)
	case !capability.Versions().Contains(req.Version):
		body = Failure(dsm.CodeVersionUnsupported)
	default:
		handler = s.handlers[req.API+"."+req.Method]
		if handler == nil {
			body = Failure(dsm.CodeMethodNotFound)
		}
	}
	s.mutex.Unlock()

	if handler != nil {
		body = handler(req)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func record(r *http.Request) (*Request, error) {
	req := &Request{
		HTTPMethod:    r.Method,
		Path:          r.URL.Path,
		Params:        url.Values{},
		Files:         map[string]File{},
		ContentLength: r.ContentLength,
	}

	for _, pair := range strings.Split(r.URL.RawQuery, "&") {
		if pair == "" {
			continue
		}

		name, value, _ := strings.Cut(pair, "=")

		name, err := url.QueryUnescape(name)
		if err != nil {
			return nil, err
		}

		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}

		req.Params.Add(name, value)
		req.Order = append(req.Order, name)
	}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err := readParts(multipart.NewReader(r.Body, params["boundary"]), req)
		if err != nil {
			return nil, err
		}
	}

	req.API = req.Params.Get("api")
	req.Method = req.Params.Get("method")
	req.Version, _ = strconv.Atoi(req.Params.Get("version"))
	req.SessionID = req.Params.Get("_sid")

	return req, nil
}

func readParts(reader *multipart.Reader, req *Request) error {
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return err
		}

		name := part.FormName()
		req.Order = append(req.Order, name)

		if part.FileName() != "" {
			req.Files[name] = File{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Content:     content,
			}

			continue
		}

		req.Params.Add(name, string(content))
	}
}

// Success returns a success envelope carrying data. nil data is omitted.
func Success(data interface{}) []byte {
	envelope := map[string]interface{}{"success": true}
	if data != nil {
		envelope["data"] = data
	}

	body, _ := json.Marshal(envelope)

	return body
}

// Failure returns a failure envelope for code with per-item details.
func Failure(code int, details ...dsm.ErrorDetail) []byte {
	failure := map[string]interface{}{"code": code}
	if len(details) > 0 {
		failure["errors"] = details
	}

	body, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   failure,
	})

	return body
}

// Static returns a handler always answering body.
func Static(body []byte) Handler {
	return func(*Request) []byte {
		return body
	}
}
