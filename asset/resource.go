package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Resource is a readable model or octree stream backed by a local file or a
// remote http(s) URL.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Get the path or URL of this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Get the lower-case file extension of the resource, including the dot.
// Query strings of remote resources are ignored.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Check whether the resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Open a resource. If relTo is specified and pathToResource does not define a
// scheme, then pathToResource is resolved against the directory of relTo.
//
// The caller must close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	resURL, err := url.Parse(filepath.ToSlash(pathToResource))
	if err != nil {
		return nil, err
	}

	if resURL.Scheme == "" && relTo != nil {
		if resURL, err = resolve(resURL.Path, relTo); err != nil {
			return nil, err
		}
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
	case "http", "https":
		reader, err = fetch(resURL)
	default:
		err = fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}
	if err != nil {
		return nil, err
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Wrap a reader into a resource.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(filepath.ToSlash(name))
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}

func resolve(relPath string, relTo *Resource) (*url.URL, error) {
	if relTo.IsRemote() {
		base := *relTo.url
		base.Path = path.Join(path.Dir(base.Path), relPath)
		base.RawQuery = ""
		return &base, nil
	}

	prefix, err := filepath.Abs(relTo.url.Path)
	if err != nil {
		return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.Path(), err.Error())
	}
	return &url.URL{Path: filepath.ToSlash(filepath.Join(filepath.Dir(prefix), relPath))}, nil
}

func fetch(resURL *url.URL) (io.ReadCloser, error) {
	resp, err := http.Get(resURL.String())
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %s", resURL.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
	}
	return resp.Body, nil
}
