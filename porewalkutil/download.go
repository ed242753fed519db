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
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// downloadRetries is the number of times a failed HTTP download is
// retried.
const downloadRetries = 2

// maybeDownload returns a local path for the input file at location.
// Existing local files and unrecognized locations are returned as-is.
// http(s) URLs and blob storage locations are copied to a temporary
// directory first. Download problems are sent to c, if it is not nil,
// and the original location is returned.
func maybeDownload(ctx context.Context, location string, c chan string) string {
	if _, err := os.Stat(location); !os.IsNotExist(err) {
		return location
	}
	var (
		local string
		err   error
	)
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		local, err = downloadHTTP(ctx, location, c)
	case IsBlob(location):
		local, err = downloadBlob(ctx, location)
	default:
		return location
	}
	if err != nil {
		send(c, err.Error())
		return location
	}
	return local
}

// send sends msg to c if c is not nil.
func send(c chan string, msg string) {
	if c != nil {
		c <- msg
	}
}

// tempFile creates a file named after the last element of location in
// a new temporary directory.
func tempFile(location string) (*os.File, error) {
	dir, err := ioutil.TempDir("", "porewalk")
	if err != nil {
		return nil, fmt.Errorf("porewalkutil: creating temporary download directory: %v", err)
	}
	return os.Create(filepath.Join(dir, path.Base(location)))
}

// discard closes and removes a partially downloaded file.
func discard(w *os.File) {
	w.Close()
	os.RemoveAll(filepath.Dir(w.Name()))
}

// downloadHTTP saves the file at fileURL locally, retrying failed
// requests with exponential backoff. Retries are reported to c.
func downloadHTTP(ctx context.Context, fileURL string, c chan string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}
	w, err := tempFile(u.Path)
	if err != nil {
		return "", err
	}
	get := func() error {
		req, err := http.NewRequest("GET", fileURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("porewalkutil: downloading %s: %s", fileURL, resp.Status)
		}
		if err := w.Truncate(0); err != nil {
			return err
		}
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err = io.Copy(w, resp.Body)
		return err
	}
	err = backoff.RetryNotify(get,
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries),
		func(err error, wait time.Duration) {
			send(c, fmt.Sprintf("%v: retrying in %v", err, wait))
		})
	if err != nil {
		discard(w)
		return "", err
	}
	return w.Name(), w.Close()
}

// downloadBlob copies the blob at location to a local file.
func downloadBlob(ctx context.Context, location string) (string, error) {
	bucket, key, err := openBlob(ctx, location)
	if err != nil {
		return "", err
	}
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return "", err
	}
	defer r.Close()
	w, err := tempFile(key)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(w, r); err != nil {
		discard(w)
		return "", err
	}
	return w.Name(), w.Close()
}
