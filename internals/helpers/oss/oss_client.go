package helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/sirupsen/logrus"

	"rumble_backend/internals/configs"
	"rumble_backend/internals/helpers/apperr"
)

/* =======================================================================
   OSS Blob Store (Aliyun)
======================================================================= */

type OSSBlobStore struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	BucketName string
	Prefix     string // optional: "submissions"
	log        *logrus.Entry
}

func NewOSSBlobStoreFromEnv(prefix string) (*OSSBlobStore, error) {
	endpoint := strings.TrimSpace(configs.GetEnv("OSS_ENDPOINT"))
	ak := strings.TrimSpace(configs.GetEnv("OSS_ACCESS_KEY_ID"))
	sk := strings.TrimSpace(configs.GetEnv("OSS_ACCESS_KEY_SECRET"))
	sts := strings.TrimSpace(configs.GetEnv("OSS_SECURITY_TOKEN"))
	bucketName := strings.TrimSpace(configs.GetEnv("OSS_BUCKET"))
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	log := configs.Log().WithField("component", "oss").WithField("bucket", bucketName)

	// light check of the bucket location
	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		var se oss.ServiceError
		if errors.As(err, &se) && se.StatusCode == http.StatusForbidden && se.Code == "AccessDenied" {
			log.Warn("skip location check due to AccessDenied")
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.WithField("location", loc).Info("bucket ready")
	}

	return &OSSBlobStore{
		Client:     client,
		Bucket:     bkt,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
		log:        log,
	}, nil
}

func (s *OSSBlobStore) key(label string) string {
	label = strings.Trim(label, "/")
	if s.Prefix == "" {
		return label
	}
	return s.Prefix + "/" + label
}

// Get fetches the object only while its etag still matches.
func (s *OSSBlobStore) Get(ctx context.Context, label, etag string) ([]byte, error) {
	opts := []oss.Option{oss.WithContext(ctx)}
	if etag != "" {
		opts = append(opts, oss.IfMatch(quoteETag(etag)))
	}
	body, err := s.Bucket.GetObject(s.key(label), opts...)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "artifact not found")
		}
		s.log.WithError(err).WithField("label", label).Error("get object failed")
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (s *OSSBlobStore) Put(ctx context.Context, label string, data []byte, contentType string) (string, error) {
	var header http.Header
	err := s.Bucket.PutObject(s.key(label), bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.CacheControl("private, max-age=31536000, immutable"),
		oss.GetResponseHeader(&header),
	)
	if err != nil {
		s.log.WithError(err).WithField("label", label).Error("put object failed")
		return "", err
	}
	return strings.Trim(header.Get(oss.HTTPHeaderEtag), `"`), nil
}

// Remove deletes the object. Submissions never call it on failure paths.
func (s *OSSBlobStore) Remove(ctx context.Context, label string) error {
	if err := s.Bucket.DeleteObject(s.key(label), oss.WithContext(ctx)); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// isNotFound also treats a failed If-Match as a missing artifact.
func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusPreconditionFailed
	}
	return false
}

func quoteETag(etag string) string {
	if strings.HasPrefix(etag, `"`) {
		return etag
	}
	return `"` + etag + `"`
}
