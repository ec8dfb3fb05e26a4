package schemafile

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
)

// AppFs é o sistema de arquivos usado por Load (trocado por MemMapFs nos testes).
var AppFs = afero.NewOsFs()

// S3Client interface para Mock
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader lê o documento de um caminho local ou de s3://bucket/key.
type Loader struct {
	Fs     afero.Fs
	S3     S3Client
	Region string
}

// Load lê e interpreta o documento em location.
func (l *Loader) Load(ctx context.Context, location string) (*Schema, error) {
	data, err := l.read(ctx, location)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return nil, fmt.Errorf("schemafile: invalid s3 location %q", location)
		}
		client, err := l.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return readS3(ctx, client, bucket, key)
	}

	fs := l.Fs
	if fs == nil {
		fs = AppFs
	}
	data, err := afero.ReadFile(fs, location)
	if err != nil {
		return nil, fmt.Errorf("schemafile: read %s: %w", location, err)
	}
	return data, nil
}

func (l *Loader) s3Client(ctx context.Context) (S3Client, error) {
	if l.S3 != nil {
		return l.S3, nil
	}
	var opts []func(*config.LoadOptions) error
	if l.Region != "" {
		opts = append(opts, config.WithRegion(l.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("schemafile: aws config: %w", err)
	}
	l.S3 = s3.NewFromConfig(cfg)
	return l.S3, nil
}

// readS3 contém a lógica de download
func readS3(ctx context.Context, client S3Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("schemafile: s3 get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("schemafile: s3 read: %w", err)
	}
	return data, nil
}

// Load lê o documento com um Loader padrão (AppFs e cliente S3 sob demanda).
func Load(ctx context.Context, location string) (*Schema, error) {
	return (&Loader{}).Load(ctx, location)
}
