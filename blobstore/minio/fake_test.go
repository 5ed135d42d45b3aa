package minio

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// fakeObjectServer is a minimal S3-compatible HTTP server covering the
// operations the store issues: PUT, HEAD, GET (ranged), DELETE and V2
// listing. Requests are not signature-checked.
type fakeObjectServer struct {
	mu      sync.Mutex
	objects map[string][]byte // key: bucket/object
}

func newFakeObjectServer() *fakeObjectServer {
	return &fakeObjectServer{objects: make(map[string][]byte)}
}

func (s *fakeObjectServer) put(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = data
}

func (s *fakeObjectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, object, _ := strings.Cut(path, "/")

	if object == "" {
		if r.Method == http.MethodGet {
			s.list(w, bucket, r.URL.Query())
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	key := bucket + "/" + object

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.mu.Lock()
		s.objects[key] = data
		s.mu.Unlock()
		w.Header().Set("ETag", `"fake"`)
		w.WriteHeader(http.StatusOK)

	case http.MethodHead:
		s.mu.Lock()
		data, ok := s.objects[key]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.objectHeaders(w, data)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		s.mu.Lock()
		data, ok := s.objects[key]
		s.mu.Unlock()
		if !ok {
			s.notFound(w, object)
			return
		}
		if rng := r.Header.Get("Range"); rng != "" {
			start, end, ok := parseRange(rng, len(data))
			if !ok {
				w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
				return
			}
			s.objectHeaders(w, data[start:end+1])
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(data[start : end+1])
			return
		}
		s.objectHeaders(w, data)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)

	case http.MethodDelete:
		s.mu.Lock()
		delete(s.objects, key)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeObjectServer) objectHeaders(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", `"fake"`)
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Type", "application/octet-stream")
}

func (s *fakeObjectServer) notFound(w http.ResponseWriter, key string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `<Error><Code>NoSuchKey</Code><Message>not found</Message><Key>%s</Key></Error>`, key)
}

func (s *fakeObjectServer) list(w http.ResponseWriter, bucket string, q url.Values) {
	prefix := q.Get("prefix")

	s.mu.Lock()
	var keys []string
	for key := range s.objects {
		b, object, _ := strings.Cut(key, "/")
		if b == bucket && strings.HasPrefix(object, prefix) {
			keys = append(keys, object)
		}
	}
	s.mu.Unlock()
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&buf, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>", bucket, prefix, len(keys))
	for _, key := range keys {
		s.mu.Lock()
		size := len(s.objects[bucket+"/"+key])
		s.mu.Unlock()
		fmt.Fprintf(&buf, `<Contents><Key>%s</Key><Size>%d</Size><ETag>"fake"</ETag><LastModified>%s</LastModified><StorageClass>STANDARD</StorageClass></Contents>`,
			key, size, time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	buf.WriteString(`</ListBucketResult>`)

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func parseRange(header string, size int) (start, end int, ok bool) {
	header = strings.TrimPrefix(header, "bytes=")
	first, last, found := strings.Cut(header, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.Atoi(first)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	end = size - 1
	if last != "" {
		end, err = strconv.Atoi(last)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= size {
			end = size - 1
		}
	}
	return start, end, true
}

func newFakeServer() (*fakeObjectServer, *httptest.Server) {
	fake := newFakeObjectServer()
	return fake, httptest.NewServer(fake)
}
