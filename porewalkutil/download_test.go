/*
Copyright © 2026 the PoreWalk authors.
This file is part of PoreWalk.

PoreWalk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreWalk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreWalk.  If not, see <http://www.gnu.org/licenses/>.
*/

package porewalkutil

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helperLog returns a channel that collects up to 100 messages.
func helperLog() chan string {
	return make(chan string, 100)
}

// testServer serves a directory holding a single file, field.ncf.
func testServer(t *testing.T) (*httptest.Server, string) {
	dir, err := ioutil.TempDir("", "porewalk")
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "field.ncf"), []byte("grayscale"), 0644))
	return httptest.NewServer(http.FileServer(http.Dir(dir))), dir
}

func TestMaybeDownloadLocal(t *testing.T) {
	if k := maybeDownload(context.Background(), "/dev/null", helperLog()); k != "/dev/null" {
		t.Error("Expected /dev/null, got ", k)
	}
}

func TestMaybeDownloadLocal2(t *testing.T) {
	if k := maybeDownload(context.Background(), "/blah/test/", helperLog()); k != "/blah/test/" {
		t.Error("Expected /blah/test/, got ", k)
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	srv, dir := testServer(t)
	defer srv.Close()
	defer os.RemoveAll(dir)

	k := maybeDownload(context.Background(), srv.URL+"/field.ncf", helperLog())
	require.True(t, strings.HasSuffix(k, "field.ncf"), "Expected tempDir/field.ncf, got %s", k)
	defer os.RemoveAll(filepath.Dir(k))
	b, err := ioutil.ReadFile(k)
	require.NoError(t, err)
	assert.Equal(t, "grayscale", string(b))
}

func TestMaybeDownloadRemoteFail(t *testing.T) {
	srv, dir := testServer(t)
	defer srv.Close()
	defer os.RemoveAll(dir)

	c := helperLog()
	path := srv.URL + "/missing.ncf"
	if k := maybeDownload(context.Background(), path, c); k != path {
		t.Errorf("Expected %s, got %s", path, k)
	}
	// Each retry and the final failure are reported.
	assert.Len(t, c, downloadRetries+1)
	var last string
	for len(c) > 0 {
		last = <-c
	}
	assert.Contains(t, last, "404")
}

func TestMaybeDownloadBlob(t *testing.T) {
	require.NoError(t, os.MkdirAll("testbucket", os.ModePerm))
	defer os.RemoveAll("testbucket")
	require.NoError(t, ioutil.WriteFile(filepath.Join("testbucket", "field.ncf"), []byte("grayscale"), 0644))

	k := maybeDownload(context.Background(), "file://testbucket/field.ncf", helperLog())
	require.True(t, strings.HasSuffix(k, "field.ncf"), "Expected tempDir/field.ncf, got %s", k)
	require.NotEqual(t, "file://testbucket/field.ncf", k)
	defer os.RemoveAll(filepath.Dir(k))
	b, err := ioutil.ReadFile(k)
	require.NoError(t, err)
	assert.Equal(t, "grayscale", string(b))

	c := helperLog()
	if k := maybeDownload(context.Background(), "file://testbucket/missing.ncf", c); k != "file://testbucket/missing.ncf" {
		t.Error("Expected the original path for a missing blob, got ", k)
	}
	assert.Len(t, c, 1)
}

func TestIsBlob(t *testing.T) {
	for _, path := range []string{"gs://b/f.ncf", "s3://b/f.ncf", "file://b/f.ncf"} {
		assert.True(t, IsBlob(path), path)
	}
	for _, path := range []string{"f.ncf", "/b/f.ncf", "http://b/f.ncf"} {
		assert.False(t, IsBlob(path), path)
	}
}

func TestOpenBucketInvalid(t *testing.T) {
	_, err := OpenBucket(context.Background(), "ftp://bucket")
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	require.NoError(t, os.MkdirAll("testbucket", os.ModePerm))
	defer os.RemoveAll("testbucket")

	var u uploader
	assert.Equal(t, "local.txt", u.maybeUpload("local.txt"))
	a := u.maybeUpload("file://testbucket/a.txt")
	b := u.maybeUpload("file://testbucket/b.txt")
	require.NoError(t, u.err)
	defer os.RemoveAll(u.dir)
	assert.NotEqual(t, a, b)
	require.NoError(t, ioutil.WriteFile(a, []byte("a"), 0644))
	require.NoError(t, ioutil.WriteFile(b, []byte("b"), 0644))

	require.NoError(t, u.upload(context.Background()))
	for _, name := range []string{"a", "b"} {
		data, err := ioutil.ReadFile(filepath.Join("testbucket", name+".txt"))
		require.NoError(t, err)
		assert.Equal(t, name, string(data))
	}
}
