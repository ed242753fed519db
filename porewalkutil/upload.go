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
	"os"
	"path/filepath"

	"github.com/google/go-cloud/blob"
)

// uploader writes output files locally and then copies the ones that
// are destined for blob storage.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "porewalk")
		if u.err != nil {
			return ""
		}
	}
	local := filepath.Join(u.dir, fmt.Sprintf("%d_%s", len(u.files), filepath.Base(path)))
	u.files = append(u.files, [2]string{local, path})
	return local
}

// upload copies the registered local files to blob storage.
func (u *uploader) upload(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		if err := uploadFile(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

func uploadFile(ctx context.Context, local, dest string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("porewalkutil: opening file '%s' for upload: %s", local, err)
	}
	defer r.Close()
	bucket, key, err := openBlob(ctx, dest)
	if err != nil {
		return fmt.Errorf("porewalkutil: opening bucket to upload file '%s': %s", dest, err)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("porewalkutil: opening writer to upload file '%s': %s", dest, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("porewalkutil: uploading file '%s' to '%s': %s", local, dest, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("porewalkutil: uploading file '%s' to '%s': %s", local, dest, err)
	}
	return nil
}
