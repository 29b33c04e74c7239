// Package assets loads backgroundImage option assets (§6) from object
// storage, so core.BackgroundImage isn't limited to files already on
// the local disk. Grounded on iluha78-FD's internal/storage/minio.go
// client construction and object-get idiom.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gogpu/segmo/core"
)

// Config names the bucket/credentials an asset Store connects to.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store fetches and decodes background-image assets from MinIO/S3.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore constructs a Store from cfg.
func NewStore(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("assets: create minio client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Load fetches the object at key, decodes it as an image, and returns a
// core.BackgroundImage ready to assign to BackgroundMode.Image.
func (s *Store) Load(ctx context.Context, key string) (core.BackgroundImage, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("assets: get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("assets: read object %s: %w", key, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode object %s: %w", key, err)
	}

	return newBackgroundImage(img), nil
}

// backgroundImage adapts a decoded image.Image to core.BackgroundImage,
// materializing its pixels into a flat RGBA buffer once at load time so
// the software backend's per-frame resampling never re-decodes.
type backgroundImage struct {
	w, h int
	rgba []uint8
}

func newBackgroundImage(img image.Image) *backgroundImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out[i], out[i+1], out[i+2], out[i+3] = uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8)
			i += 4
		}
	}
	return &backgroundImage{w: w, h: h, rgba: out}
}

func (b *backgroundImage) Width() int    { return b.w }
func (b *backgroundImage) Height() int   { return b.h }
func (b *backgroundImage) RGBA() []uint8 { return b.rgba }
