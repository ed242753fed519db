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
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
)

// bucketOpeners open a bucket by name for each supported storage
// provider.
var bucketOpeners = map[string]func(ctx context.Context, name string) (*blob.Bucket, error){
	"file": func(_ context.Context, dir string) (*blob.Bucket, error) { return fileblob.NewBucket(dir) },
	"gs":   openGCS,
	"s3":   openS3,
}

// IsBlob reports whether path refers to blob storage, which is the
// case when it begins with gs://, s3://, or file://.
func IsBlob(path string) bool {
	for provider := range bucketOpeners {
		if strings.HasPrefix(path, provider+"://") {
			return true
		}
	}
	return false
}

// OpenBucket opens the bucket named by bucketName, which has the form
// provider://bucket. Any path after the bucket name is ignored.
// Providers are "gs" (Google Cloud Storage), "s3" (Amazon S3), and
// "file", where the bucket is a local directory.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("porewalkutil.OpenBucket: %v", err)
	}
	open, ok := bucketOpeners[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("porewalkutil.OpenBucket: invalid provider %s", u.Scheme)
	}
	return open(ctx, u.Hostname())
}

// openBlob splits a blob path into its bucket, which it opens, and the
// key of the object within the bucket.
func openBlob(ctx context.Context, path string) (*blob.Bucket, string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, "", err
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return nil, "", err
	}
	return bucket, strings.TrimPrefix(u.Path, "/"), nil
}

// openGCS uses the application default credentials, described at
// https://cloud.google.com/docs/authentication/production.
func openGCS(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, client)
}

// openS3 reads credentials from AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY. The region is AWS_REGION, or us-east-2 if
// that is unset.
func openS3(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, sess, name)
}
