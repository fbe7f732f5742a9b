package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"genebank/internal/blob/core"
)

type mockObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

// mockBucket answers the subset of the S3 REST API the store issues.
type mockBucket struct {
	mu      sync.Mutex
	objects map[string]mockObject
}

func newMockBucket() *mockBucket { return &mockBucket{objects: make(map[string]mockObject)} }

func response(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header, ContentLength: int64(len(body))}
}

func (m *mockBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		keys := make([]string, 0, len(m.objects))
		for k := range m.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;etag&quot;</ETag><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(m.objects[k].body))
		}
		b.WriteString("</ListBucketResult>")
		return response(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}}), nil
	}
	obj, exists := m.objects[key]
	headers := func() http.Header {
		h := http.Header{
			"Content-Length": {fmt.Sprint(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"Etag":           {`"etag"`},
			"Last-Modified":  {time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
		}
		for k, v := range obj.metadata {
			h.Set("X-Amz-Meta-"+k, v)
		}
		return h
	}
	switch req.Method {
	case http.MethodHead:
		if !exists {
			return response(http.StatusNotFound, nil, nil), nil
		}
		r := response(http.StatusOK, nil, headers())
		r.ContentLength = int64(len(obj.body))
		return r, nil
	case http.MethodGet:
		if !exists {
			return response(http.StatusNotFound, []byte(`<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`), http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return response(http.StatusOK, obj.body, headers()), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		md := map[string]string{}
		for k, v := range req.Header {
			if strings.HasPrefix(strings.ToLower(k), "x-amz-meta-") {
				md[strings.ToLower(strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-"))] = v[0]
			}
		}
		m.objects[key] = mockObject{body: body, contentType: req.Header.Get("Content-Type"), metadata: md}
		return response(http.StatusOK, nil, http.Header{"Etag": {`"etag"`}}), nil
	case http.MethodDelete:
		delete(m.objects, key)
		return response(http.StatusNoContent, nil, nil), nil
	}
	return response(http.StatusNotImplemented, nil, nil), nil
}

func newMockStore(t *testing.T) (*Store, *mockBucket) {
	t.Helper()
	bucket := newMockBucket()
	s, err := New(context.Background(), Config{
		Bucket:          "uploads",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: bucket},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s, bucket
}

func TestS3StoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, bucket := newMockStore(t)
	if s.Driver() != core.DriverS3 || s.Bucket() != "uploads" {
		t.Fatalf("unexpected store %s %s", s.Driver(), s.Bucket())
	}
	info, err := s.Put(ctx, "uploads/accession/1.csv", strings.NewReader("PUID\n"), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"actor": "ana"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 5 || info.ETag != "etag" {
		t.Fatalf("unexpected info %+v", info)
	}
	if string(bucket.objects["uploads/accession/1.csv"].body) != "PUID\n" {
		t.Fatalf("unexpected stored body %q", bucket.objects["uploads/accession/1.csv"].body)
	}
	if _, err := s.Put(ctx, "uploads/accession/1.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := s.Get(ctx, "uploads/accession/1.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "PUID\n" {
		t.Fatalf("unexpected body %q", body)
	}
	list, err := s.List(ctx, "uploads/")
	if err != nil || len(list) != 1 || list[0].Size != 5 {
		t.Fatalf("unexpected list %v %v", list, err)
	}
	if ok, err := s.Delete(ctx, "uploads/accession/1.csv"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := s.Delete(ctx, "uploads/accession/1.csv"); err != nil || ok {
		t.Fatalf("expected missing delete false, got %v %v", ok, err)
	}
	if _, _, err := s.Get(ctx, "uploads/accession/1.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket required error")
	}
}
